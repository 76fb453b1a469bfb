package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/norraset/shopapi/internal/database"
	"github.com/norraset/shopapi/internal/models"
)

type ShippingStore struct {
	DB *sql.DB
}

type ShippingInput struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	District string `json:"district"`
	Amphoe   string `json:"amphoe"`
	Province string `json:"province"`
	Zipcode  string `json:"zipcode"`
}

// Upsert writes the shipping address of an order, replacing any previous one.
func (s *ShippingStore) Upsert(ctx context.Context, orderID int64, in ShippingInput) (*models.ShippingInfo, error) {
	info := &models.ShippingInfo{}

	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO shipping_info (order_id, name, phone, address, district, amphoe, province, zipcode, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		 ON CONFLICT (order_id) DO UPDATE
		 SET name = EXCLUDED.name,
		     phone = EXCLUDED.phone,
		     address = EXCLUDED.address,
		     district = EXCLUDED.district,
		     amphoe = EXCLUDED.amphoe,
		     province = EXCLUDED.province,
		     zipcode = EXCLUDED.zipcode,
		     updated_at = NOW()
		 RETURNING id, order_id, name, phone, address, district, amphoe, province, zipcode, created_at, updated_at`,
		orderID, in.Name, in.Phone, in.Address, in.District, in.Amphoe, in.Province, in.Zipcode).Scan(
		&info.ID, &info.OrderID, &info.Name, &info.Phone, &info.Address,
		&info.District, &info.Amphoe, &info.Province, &info.Zipcode,
		&info.CreatedAt, &info.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("upsert shipping info: %w", err)
	}

	return info, nil
}

// Labels projects the address fields of orders ready for fulfillment.
// The inner join drops orders without shipping info; the status filter keeps
// only paid or verified orders. Newest orders come first.
func (s *ShippingStore) Labels(ctx context.Context) ([]models.ShippingLabel, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT o.id, si.name, si.phone, si.address, si.district, si.amphoe, si.province, si.zipcode
		 FROM orders o
		 JOIN shipping_info si ON si.order_id = o.id
		 WHERE o.status IN ($1, $2)
		 ORDER BY o.created_at DESC, o.id DESC`,
		models.OrderStatusPaid, models.OrderStatusVerified)
	if err != nil {
		return nil, fmt.Errorf("list shipping labels: %w", err)
	}
	defer rows.Close()

	labels := []models.ShippingLabel{}
	for rows.Next() {
		var label models.ShippingLabel
		err := rows.Scan(
			&label.OrderID, &label.Name, &label.Phone, &label.Address,
			&label.District, &label.Amphoe, &label.Province, &label.Zipcode)
		if err != nil {
			return nil, fmt.Errorf("scan shipping label: %w", err)
		}
		labels = append(labels, label)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return labels, nil
}
