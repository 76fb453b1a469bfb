package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/norraset/shopapi/internal/database"
	"github.com/norraset/shopapi/internal/models"
	"github.com/shopspring/decimal"
)

type ProductStore struct {
	DB *sql.DB
}

type SizeStockInput struct {
	SizeID int64
	Stock  int
}

// Create inserts the product together with its initial stock ledger rows in
// one transaction.
func (s *ProductStore) Create(ctx context.Context, categoryID int64, sku, name, description string, price decimal.Decimal, sizes []SizeStockInput) (*models.Product, error) {
	product := &models.Product{}

	err := database.WithTransaction(ctx, s.DB, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var category interface{}
		if categoryID != 0 {
			category = categoryID
		}

		err := tx.QueryRowContext(ctx,
			`INSERT INTO products (category_id, sku, name, description, price, created_at, updated_at, version)
			 VALUES ($1, $2, $3, $4, $5, NOW(), NOW(), 1)
			 RETURNING id, COALESCE(category_id, 0), sku, name, description, price, created_at, updated_at, version`,
			category, sku, name, description, price).Scan(
			&product.ID,
			&product.CategoryID,
			&product.SKU,
			&product.Name,
			&product.Description,
			&product.Price,
			&product.CreatedAt,
			&product.UpdatedAt,
			&product.Version,
		)
		if err != nil {
			return fmt.Errorf("create product: %w", err)
		}

		for _, sz := range sizes {
			var ps models.ProductSize
			err := tx.QueryRowContext(ctx,
				`INSERT INTO product_sizes (product_id, size_id, stock_quantity, updated_at)
				 VALUES ($1, $2, $3, NOW())
				 RETURNING id, product_id, size_id, stock_quantity, updated_at`,
				product.ID, sz.SizeID, sz.Stock).Scan(
				&ps.ID, &ps.ProductID, &ps.SizeID, &ps.StockQuantity, &ps.UpdatedAt)
			if err != nil {
				return fmt.Errorf("create product size: %w", err)
			}
			product.Sizes = append(product.Sizes, ps)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return product, nil
}

func (s *ProductStore) Get(ctx context.Context, id int64) (*models.Product, error) {
	product := &models.Product{}

	query := `
		SELECT id, COALESCE(category_id, 0), sku, name, description, price, created_at, updated_at, version
		FROM products
		WHERE id = $1`

	err := s.DB.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.CategoryID,
		&product.SKU,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.CreatedAt,
		&product.UpdatedAt,
		&product.Version,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	sizesQuery := `
		SELECT ps.id, ps.product_id, ps.size_id, sz.label, ps.stock_quantity, ps.updated_at
		FROM product_sizes ps
		JOIN sizes sz ON sz.id = ps.size_id
		WHERE ps.product_id = $1
		ORDER BY ps.size_id`

	rows, err := s.DB.QueryContext(ctx, sizesQuery, id)
	if err != nil {
		return nil, fmt.Errorf("get product sizes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ps models.ProductSize
		err := rows.Scan(&ps.ID, &ps.ProductID, &ps.SizeID, &ps.SizeLabel, &ps.StockQuantity, &ps.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan product size: %w", err)
		}
		product.Sizes = append(product.Sizes, ps)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return product, nil
}

func (s *ProductStore) List(ctx context.Context, page, pageSize int) (*OffsetPage, error) {
	var total int64
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	offset := (page - 1) * pageSize
	query := `
		SELECT id, COALESCE(category_id, 0), sku, name, description, price, created_at, updated_at, version
		FROM products
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := s.DB.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var product models.Product
		err := rows.Scan(
			&product.ID,
			&product.CategoryID,
			&product.SKU,
			&product.Name,
			&product.Description,
			&product.Price,
			&product.CreatedAt,
			&product.UpdatedAt,
			&product.Version,
		)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return NewOffsetPage(products, total, page, pageSize), nil
}

// Availability reads the remaining stock of one (product, size) pair.
// This is a plain read; the binding check happens inside the checkout
// transaction under a row lock.
func (s *ProductStore) Availability(ctx context.Context, productID, sizeID int64) (*models.ProductSize, error) {
	ps := &models.ProductSize{}

	query := `
		SELECT ps.id, ps.product_id, ps.size_id, sz.label, ps.stock_quantity, ps.updated_at
		FROM product_sizes ps
		JOIN sizes sz ON sz.id = ps.size_id
		WHERE ps.product_id = $1 AND ps.size_id = $2`

	err := s.DB.QueryRowContext(ctx, query, productID, sizeID).Scan(
		&ps.ID, &ps.ProductID, &ps.SizeID, &ps.SizeLabel, &ps.StockQuantity, &ps.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrSizeNotFound
		}
		return nil, fmt.Errorf("get availability: %w", err)
	}

	return ps, nil
}

// Restock atomically adds quantity to a ledger row.
func (s *ProductStore) Restock(ctx context.Context, productID, sizeID int64, quantity int) (*models.ProductSize, error) {
	ps := &models.ProductSize{}

	err := s.DB.QueryRowContext(ctx,
		`UPDATE product_sizes
		 SET stock_quantity = stock_quantity + $1,
		     updated_at = NOW()
		 WHERE product_id = $2 AND size_id = $3
		 RETURNING id, product_id, size_id, stock_quantity, updated_at`,
		quantity, productID, sizeID).Scan(
		&ps.ID, &ps.ProductID, &ps.SizeID, &ps.StockQuantity, &ps.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrSizeNotFound
		}
		return nil, fmt.Errorf("restock: %w", err)
	}

	return ps, nil
}

// decrementStock is the check-and-decrement half of a reservation. The
// conditional WHERE keeps the ledger from going negative even if two
// transactions raced past the availability read.
func decrementStock(ctx context.Context, tx *sql.Tx, productSizeID int64, quantity int) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE product_sizes
		 SET stock_quantity = stock_quantity - $1,
		     updated_at = NOW()
		 WHERE id = $2
		   AND stock_quantity >= $1`,
		quantity, productSizeID)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return database.ErrInsufficientStock
	}

	return nil
}
