package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/norraset/shopapi/internal/database"
	"github.com/norraset/shopapi/internal/models"
	"github.com/shopspring/decimal"
)

type CartStore struct {
	DB *sql.DB
}

// AddItem upserts a cart line for the (product, size) pair after checking
// that the combined requested quantity does not exceed the current stock.
// The check is advisory only; stock is reserved at checkout, so a line that
// was addable may still fail there if someone else bought the pieces first.
func (s *CartStore) AddItem(ctx context.Context, userID, productID, sizeID int64, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}

	item := &models.CartItem{}

	err := database.WithTransaction(ctx, s.DB, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var productSizeID int64
		var stock int
		err := tx.QueryRowContext(ctx,
			`SELECT id, stock_quantity
			 FROM product_sizes
			 WHERE product_id = $1 AND size_id = $2`,
			productID, sizeID).Scan(&productSizeID, &stock)
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrSizeNotFound
			}
			return fmt.Errorf("lookup product size: %w", err)
		}

		var existing int
		err = tx.QueryRowContext(ctx,
			`SELECT COALESCE(
			    (SELECT quantity FROM cart_items WHERE user_id = $1 AND product_size_id = $2), 0)`,
			userID, productSizeID).Scan(&existing)
		if err != nil {
			return fmt.Errorf("lookup cart quantity: %w", err)
		}

		if existing+quantity > stock {
			return database.ErrInsufficientStock
		}

		err = tx.QueryRowContext(ctx,
			`INSERT INTO cart_items (user_id, product_size_id, quantity, created_at)
			 VALUES ($1, $2, $3, NOW())
			 ON CONFLICT (user_id, product_size_id)
			 DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
			 RETURNING id, user_id, product_size_id, quantity, created_at`,
			userID, productSizeID, quantity).Scan(
			&item.ID, &item.UserID, &item.ProductSizeID, &item.Quantity, &item.CreatedAt)
		if err != nil {
			return fmt.Errorf("upsert cart item: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

func (s *CartStore) Get(ctx context.Context, userID int64) (*models.Cart, error) {
	query := `
		SELECT ci.id, ci.user_id, ci.product_size_id, p.id, p.name, sz.label,
		       ci.quantity, p.price, ci.created_at
		FROM cart_items ci
		JOIN product_sizes ps ON ps.id = ci.product_size_id
		JOIN products p ON p.id = ps.product_id
		JOIN sizes sz ON sz.id = ps.size_id
		WHERE ci.user_id = $1
		ORDER BY ci.id`

	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	defer rows.Close()

	cart := &models.Cart{UserID: userID, Items: []models.CartItem{}}
	total := decimal.Zero

	for rows.Next() {
		var item models.CartItem
		err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.ProductSizeID,
			&item.ProductID,
			&item.ProductName,
			&item.SizeLabel,
			&item.Quantity,
			&item.UnitPrice,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		item.Subtotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(item.Subtotal)
		cart.Items = append(cart.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	cart.Total = total
	return cart, nil
}

func (s *CartStore) RemoveItem(ctx context.Context, userID, itemID int64) error {
	result, err := s.DB.ExecContext(ctx,
		`DELETE FROM cart_items WHERE id = $1 AND user_id = $2`,
		itemID, userID)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return database.ErrCartItemNotFound
	}

	return nil
}

func (s *CartStore) Clear(ctx context.Context, userID int64) error {
	_, err := s.DB.ExecContext(ctx,
		`DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
