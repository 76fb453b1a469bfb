package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/norraset/shopapi/internal/database"
	"github.com/norraset/shopapi/internal/models"
	"github.com/shopspring/decimal"
)

type PaymentStore struct {
	DB *sql.DB
}

// VerificationResult carries both sides of the joint update so callers can
// refresh caches without a second read.
type VerificationResult struct {
	Slip        models.PaymentSlip `json:"payment_slip"`
	OrderStatus models.OrderStatus `json:"order_status"`
}

// SubmitSlip records a payment proof for a PENDING order and moves the order
// to PAID in the same transaction. One slip per order.
func (s *PaymentStore) SubmitSlip(ctx context.Context, orderID int64, amount decimal.Decimal, imageURL string) (*models.PaymentSlip, error) {
	slip := &models.PaymentSlip{}

	err := database.WithRetry(ctx, s.DB, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var status models.OrderStatus
		err := tx.QueryRowContext(ctx,
			`SELECT status FROM orders WHERE id = $1 FOR UPDATE`,
			orderID).Scan(&status)
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrOrderNotFound
			}
			return fmt.Errorf("lock order: %w", err)
		}

		newStatus, err := status.Transition(models.OrderStatusPaid)
		if err != nil {
			return err
		}

		err = tx.QueryRowContext(ctx,
			`INSERT INTO payment_slips (order_id, reference, amount, image_url, status, verified, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, FALSE, NOW(), NOW())
			 RETURNING id, order_id, reference, amount, image_url, status, verified, verified_by, verified_at, created_at, updated_at`,
			orderID, uuid.NewString(), amount, imageURL, models.SlipStatusPending).Scan(
			&slip.ID, &slip.OrderID, &slip.Reference, &slip.Amount, &slip.ImageURL,
			&slip.Status, &slip.Verified, &slip.VerifiedBy, &slip.VerifiedAt,
			&slip.CreatedAt, &slip.UpdatedAt)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23505" {
				return database.ErrSlipExists
			}
			return fmt.Errorf("create payment slip: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE orders
			 SET status = $1, updated_at = NOW(), version = version + 1
			 WHERE id = $2`,
			newStatus, orderID)
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return slip, nil
}

// Verify applies an admin decision to a slip and its parent order in one
// transaction. A slip can be decided exactly once: the conditional update on
// the PENDING status makes concurrent verifications first-writer-wins, with
// the loser getting ErrSlipAlreadyDecided. APPROVED moves the order to
// VERIFIED; REJECTED returns it to PENDING.
func (s *PaymentStore) Verify(ctx context.Context, slipID int64, decision models.SlipStatus, verifierID int64) (*VerificationResult, error) {
	targetOrderStatus, err := models.OrderStatusForDecision(decision)
	if err != nil {
		return nil, err
	}

	result := &VerificationResult{}

	err = database.WithRetry(ctx, s.DB, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var orderID int64
		var slipStatus models.SlipStatus
		var orderStatus models.OrderStatus

		err := tx.QueryRowContext(ctx,
			`SELECT s.order_id, s.status, o.status
			 FROM payment_slips s
			 JOIN orders o ON o.id = s.order_id
			 WHERE s.id = $1
			 FOR UPDATE OF s, o`,
			slipID).Scan(&orderID, &slipStatus, &orderStatus)
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrSlipNotFound
			}
			return fmt.Errorf("lock slip: %w", err)
		}

		if slipStatus.Decided() {
			return database.ErrSlipAlreadyDecided
		}

		newOrderStatus, err := orderStatus.Transition(targetOrderStatus)
		if err != nil {
			return err
		}

		slip := &result.Slip
		err = tx.QueryRowContext(ctx,
			`UPDATE payment_slips
			 SET status = $2, verified = $3, verified_by = $4, verified_at = NOW(), updated_at = NOW()
			 WHERE id = $1 AND status = $5
			 RETURNING id, order_id, reference, amount, image_url, status, verified, verified_by, verified_at, created_at, updated_at`,
			slipID, decision, decision == models.SlipStatusApproved, verifierID, models.SlipStatusPending).Scan(
			&slip.ID, &slip.OrderID, &slip.Reference, &slip.Amount, &slip.ImageURL,
			&slip.Status, &slip.Verified, &slip.VerifiedBy, &slip.VerifiedAt,
			&slip.CreatedAt, &slip.UpdatedAt)
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrSlipAlreadyDecided
			}
			return fmt.Errorf("update slip: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE orders
			 SET status = $1, updated_at = NOW(), version = version + 1
			 WHERE id = $2`,
			newOrderStatus, orderID)
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}

		result.OrderStatus = newOrderStatus
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *PaymentStore) GetSlip(ctx context.Context, slipID int64) (*models.PaymentSlip, error) {
	slip := &models.PaymentSlip{}

	err := s.DB.QueryRowContext(ctx,
		`SELECT id, order_id, reference, amount, image_url, status, verified, verified_by, verified_at, created_at, updated_at
		 FROM payment_slips
		 WHERE id = $1`,
		slipID).Scan(
		&slip.ID, &slip.OrderID, &slip.Reference, &slip.Amount, &slip.ImageURL,
		&slip.Status, &slip.Verified, &slip.VerifiedBy, &slip.VerifiedAt,
		&slip.CreatedAt, &slip.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrSlipNotFound
		}
		return nil, fmt.Errorf("get payment slip: %w", err)
	}

	return slip, nil
}

// ListPendingSlips feeds the admin verification queue, oldest first.
func (s *PaymentStore) ListPendingSlips(ctx context.Context, page, pageSize int) (*OffsetPage, error) {
	var total int64
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM payment_slips WHERE status = $1`,
		models.SlipStatusPending).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count pending slips: %w", err)
	}

	offset := (page - 1) * pageSize
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, order_id, reference, amount, image_url, status, verified, verified_by, verified_at, created_at, updated_at
		 FROM payment_slips
		 WHERE status = $1
		 ORDER BY created_at
		 LIMIT $2 OFFSET $3`,
		models.SlipStatusPending, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list pending slips: %w", err)
	}
	defer rows.Close()

	var slips []models.PaymentSlip
	for rows.Next() {
		var slip models.PaymentSlip
		err := rows.Scan(
			&slip.ID, &slip.OrderID, &slip.Reference, &slip.Amount, &slip.ImageURL,
			&slip.Status, &slip.Verified, &slip.VerifiedBy, &slip.VerifiedAt,
			&slip.CreatedAt, &slip.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan slip: %w", err)
		}
		slips = append(slips, slip)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return NewOffsetPage(slips, total, page, pageSize), nil
}
