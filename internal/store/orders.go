package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/norraset/shopapi/internal/database"
	"github.com/norraset/shopapi/internal/models"
	"github.com/shopspring/decimal"
)

type OrderStore struct {
	DB *sql.DB
}

func generateOrderNumber() string {
	return fmt.Sprintf("ORD-%d", time.Now().UnixNano())
}

// Checkout converts the user's cart into an order. The whole conversion is
// one serializable transaction: ledger rows are locked in a stable order,
// unit prices are captured from the products table (never from the client),
// stock is decremented with a conditional update, and the cart is cleared.
// Any shortage rolls the entire order back.
func (s *OrderStore) Checkout(ctx context.Context, userID int64) (*models.Order, error) {
	var order *models.Order

	err := database.WithRetry(ctx, s.DB, database.SerializableTxOptions(), func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)",
			userID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check user exists: %w", err)
		}
		if !exists {
			return database.ErrUserNotFound
		}

		type cartLine struct {
			productSizeID int64
			productName   string
			sizeLabel     string
			quantity      int
			unitPrice     decimal.Decimal
		}

		// Lock the ledger rows in product_size_id order so two overlapping
		// checkouts cannot deadlock on each other.
		rows, err := tx.QueryContext(ctx,
			`SELECT ci.product_size_id, p.name, sz.label, ci.quantity, p.price
			 FROM cart_items ci
			 JOIN product_sizes ps ON ps.id = ci.product_size_id
			 JOIN products p ON p.id = ps.product_id
			 JOIN sizes sz ON sz.id = ps.size_id
			 WHERE ci.user_id = $1
			 ORDER BY ci.product_size_id
			 FOR UPDATE OF ps`,
			userID)
		if err != nil {
			return fmt.Errorf("lock cart lines: %w", err)
		}

		var lines []cartLine
		for rows.Next() {
			var line cartLine
			if err := rows.Scan(&line.productSizeID, &line.productName, &line.sizeLabel, &line.quantity, &line.unitPrice); err != nil {
				rows.Close()
				return fmt.Errorf("scan cart line: %w", err)
			}
			lines = append(lines, line)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("rows error: %w", err)
		}

		if len(lines) == 0 {
			return database.ErrCartEmpty
		}

		totalAmount := decimal.Zero
		for _, line := range lines {
			totalAmount = totalAmount.Add(line.unitPrice.Mul(decimal.NewFromInt(int64(line.quantity))))
		}

		orderNumber := generateOrderNumber()
		var orderID int64
		err = tx.QueryRowContext(ctx,
			`INSERT INTO orders (user_id, order_number, status, total_amount, created_at, updated_at, version)
			 VALUES ($1, $2, $3, $4, NOW(), NOW(), 1)
			 RETURNING id`,
			userID, orderNumber, models.OrderStatusPending, totalAmount).Scan(&orderID)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		items := make([]models.OrderItem, 0, len(lines))
		for _, line := range lines {
			subtotal := line.unitPrice.Mul(decimal.NewFromInt(int64(line.quantity)))

			item := models.OrderItem{
				OrderID:       orderID,
				ProductSizeID: line.productSizeID,
				ProductName:   line.productName,
				SizeLabel:     line.sizeLabel,
				Quantity:      line.quantity,
				UnitPrice:     line.unitPrice,
				Subtotal:      subtotal,
			}
			err = tx.QueryRowContext(ctx,
				`INSERT INTO order_items (order_id, product_size_id, quantity, unit_price, subtotal, created_at)
				 VALUES ($1, $2, $3, $4, $5, NOW())
				 RETURNING id`,
				orderID, line.productSizeID, line.quantity, line.unitPrice, subtotal).Scan(&item.ID)
			if err != nil {
				return fmt.Errorf("create order item: %w", err)
			}
			items = append(items, item)

			if err := decrementStock(ctx, tx, line.productSizeID, line.quantity); err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx,
			`DELETE FROM cart_items WHERE user_id = $1`, userID)
		if err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		order = &models.Order{ID: orderID}
		err = tx.QueryRowContext(ctx,
			`SELECT order_number, user_id, status, total_amount, created_at, updated_at, version
			 FROM orders WHERE id = $1`,
			orderID).Scan(
			&order.OrderNumber,
			&order.UserID,
			&order.Status,
			&order.TotalAmount,
			&order.CreatedAt,
			&order.UpdatedAt,
			&order.Version,
		)
		if err != nil {
			return fmt.Errorf("fetch created order: %w", err)
		}
		order.Items = items

		return nil
	})

	if err != nil {
		return nil, err
	}

	return order, nil
}

// Get loads the full order aggregate: items with product and size labels,
// shipping info and payment slip when present.
func (s *OrderStore) Get(ctx context.Context, id int64) (*models.Order, error) {
	order := &models.Order{}

	err := s.DB.QueryRowContext(ctx,
		`SELECT id, user_id, order_number, status, total_amount, created_at, updated_at, version
		 FROM orders
		 WHERE id = $1`,
		id).Scan(
		&order.ID,
		&order.UserID,
		&order.OrderNumber,
		&order.Status,
		&order.TotalAmount,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.Version,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT oi.id, oi.order_id, oi.product_size_id, p.name, sz.label,
		        oi.quantity, oi.unit_price, oi.subtotal, oi.created_at
		 FROM order_items oi
		 JOIN product_sizes ps ON ps.id = oi.product_size_id
		 JOIN products p ON p.id = ps.product_id
		 JOIN sizes sz ON sz.id = ps.size_id
		 WHERE oi.order_id = $1
		 ORDER BY oi.id`,
		id)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductSizeID,
			&item.ProductName,
			&item.SizeLabel,
			&item.Quantity,
			&item.UnitPrice,
			&item.Subtotal,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	order.Items = items

	shipping := &models.ShippingInfo{}
	err = s.DB.QueryRowContext(ctx,
		`SELECT id, order_id, name, phone, address, district, amphoe, province, zipcode, created_at, updated_at
		 FROM shipping_info
		 WHERE order_id = $1`,
		id).Scan(
		&shipping.ID, &shipping.OrderID, &shipping.Name, &shipping.Phone,
		&shipping.Address, &shipping.District, &shipping.Amphoe,
		&shipping.Province, &shipping.Zipcode, &shipping.CreatedAt, &shipping.UpdatedAt)
	if err == nil {
		order.Shipping = shipping
	} else if err != sql.ErrNoRows {
		return nil, fmt.Errorf("get shipping info: %w", err)
	}

	slip := &models.PaymentSlip{}
	err = s.DB.QueryRowContext(ctx,
		`SELECT id, order_id, reference, amount, image_url, status, verified, verified_by, verified_at, created_at, updated_at
		 FROM payment_slips
		 WHERE order_id = $1`,
		id).Scan(
		&slip.ID, &slip.OrderID, &slip.Reference, &slip.Amount, &slip.ImageURL,
		&slip.Status, &slip.Verified, &slip.VerifiedBy, &slip.VerifiedAt,
		&slip.CreatedAt, &slip.UpdatedAt)
	if err == nil {
		order.Slip = slip
	} else if err != sql.ErrNoRows {
		return nil, fmt.Errorf("get payment slip: %w", err)
	}

	return order, nil
}

func (s *OrderStore) GetStatus(ctx context.Context, id int64) (models.OrderStatus, error) {
	var status models.OrderStatus
	err := s.DB.QueryRowContext(ctx,
		`SELECT status FROM orders WHERE id = $1`, id).Scan(&status)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", database.ErrOrderNotFound
		}
		return "", fmt.Errorf("get order status: %w", err)
	}
	return status, nil
}

func (s *OrderStore) ListByUserCursor(ctx context.Context, userID int64, cursor string, limit int) (*CursorPage, error) {
	cursorData, err := DecodeCursor(cursor)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}

	query := `
		SELECT id, user_id, order_number, status, total_amount, created_at, updated_at, version
		FROM orders
		WHERE user_id = $1
		  AND (created_at, id) < ($2, $3)
		ORDER BY created_at DESC, id DESC
		LIMIT $4`

	rows, err := s.DB.QueryContext(ctx, query, userID, cursorData.CreatedAt, cursorData.ID, limit+1)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var order models.Order
		err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.OrderNumber,
			&order.Status,
			&order.TotalAmount,
			&order.CreatedAt,
			&order.UpdatedAt,
			&order.Version,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	hasMore := len(orders) > limit
	if hasMore {
		orders = orders[:limit]
	}

	var nextCursor string
	if hasMore && len(orders) > 0 {
		lastOrder := orders[len(orders)-1]
		nextCursor = EncodeCursor(OrderCursor{
			CreatedAt: lastOrder.CreatedAt,
			ID:        lastOrder.ID,
		})
	}

	return &CursorPage{
		Items:      orders,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}
