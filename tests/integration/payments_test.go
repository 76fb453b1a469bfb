package integration

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/norraset/shopapi/internal/database"
	"github.com/norraset/shopapi/internal/models"
	"github.com/norraset/shopapi/internal/store"
)

// placeOrder runs a one-item cart through checkout and returns the PENDING order.
func placeOrder(t *testing.T, db *sql.DB, userID, productID, sizeID int64) *models.Order {
	t.Helper()
	ctx := context.Background()

	carts := &store.CartStore{DB: db}
	if _, err := carts.AddItem(ctx, userID, productID, sizeID, 1); err != nil {
		t.Fatalf("Add item: %v", err)
	}

	orders := &store.OrderStore{DB: db}
	order, err := orders.Checkout(ctx, userID)
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	return order
}

func TestSubmitSlip(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	user := createTestUser(t, db, "slip@example.com")
	size := createTestSize(t, db, "M")
	category := createTestCategory(t, db, "Shirts")
	product := createTestProduct(t, db, category.ID, "PAY-001", 100, size.ID, 10)
	order := placeOrder(t, db, user.ID, product.ID, size.ID)

	payments := &store.PaymentStore{DB: db}
	slip, err := payments.SubmitSlip(ctx, order.ID, decimal.NewFromInt(100), "https://img.example.com/slip.jpg")
	if err != nil {
		t.Fatalf("Submit slip: %v", err)
	}

	if slip.Status != models.SlipStatusPending {
		t.Errorf("Expected slip status PENDING, got %s", slip.Status)
	}
	if slip.Reference == "" {
		t.Error("Expected a generated slip reference")
	}
	if slip.Verified {
		t.Error("Fresh slip must not be verified")
	}

	orders := &store.OrderStore{DB: db}
	status, err := orders.GetStatus(ctx, order.ID)
	if err != nil {
		t.Fatalf("Get status: %v", err)
	}
	if status != models.OrderStatusPaid {
		t.Errorf("Expected order PAID after slip submission, got %s", status)
	}
}

func TestSubmitSlipTwice(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	user := createTestUser(t, db, "slip-twice@example.com")
	size := createTestSize(t, db, "M")
	category := createTestCategory(t, db, "Shirts")
	product := createTestProduct(t, db, category.ID, "PAY-002", 100, size.ID, 10)
	order := placeOrder(t, db, user.ID, product.ID, size.ID)

	payments := &store.PaymentStore{DB: db}
	if _, err := payments.SubmitSlip(ctx, order.ID, decimal.NewFromInt(100), ""); err != nil {
		t.Fatalf("First slip: %v", err)
	}

	// The order is now PAID: a second slip is an invalid transition.
	_, err := payments.SubmitSlip(ctx, order.ID, decimal.NewFromInt(100), "")
	if err == nil {
		t.Fatal("Expected second slip submission to fail")
	}
	if !errors.Is(err, models.ErrInvalidTransition) && !errors.Is(err, database.ErrSlipExists) {
		t.Errorf("Expected invalid transition or slip exists, got %v", err)
	}
}

func TestVerifyApprove(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	user := createTestUser(t, db, "approve@example.com")
	admin := createTestUser(t, db, "admin-approve@example.com")
	size := createTestSize(t, db, "M")
	category := createTestCategory(t, db, "Shirts")
	product := createTestProduct(t, db, category.ID, "PAY-003", 100, size.ID, 10)
	order := placeOrder(t, db, user.ID, product.ID, size.ID)

	payments := &store.PaymentStore{DB: db}
	slip, err := payments.SubmitSlip(ctx, order.ID, decimal.NewFromInt(100), "")
	if err != nil {
		t.Fatalf("Submit slip: %v", err)
	}

	result, err := payments.Verify(ctx, slip.ID, models.SlipStatusApproved, admin.ID)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}

	if result.OrderStatus != models.OrderStatusVerified {
		t.Errorf("Expected order VERIFIED after approval, got %s", result.OrderStatus)
	}
	if result.Slip.Status != models.SlipStatusApproved {
		t.Errorf("Expected slip APPROVED, got %s", result.Slip.Status)
	}
	if !result.Slip.Verified {
		t.Error("Approved slip must be marked verified")
	}
	if result.Slip.VerifiedBy == nil || *result.Slip.VerifiedBy != admin.ID {
		t.Errorf("Expected verified_by %d, got %v", admin.ID, result.Slip.VerifiedBy)
	}
	if result.Slip.VerifiedAt == nil {
		t.Error("Expected verified_at to be set")
	}
}

func TestVerifyReject(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	user := createTestUser(t, db, "reject@example.com")
	admin := createTestUser(t, db, "admin-reject@example.com")
	size := createTestSize(t, db, "M")
	category := createTestCategory(t, db, "Shirts")
	product := createTestProduct(t, db, category.ID, "PAY-004", 100, size.ID, 10)
	order := placeOrder(t, db, user.ID, product.ID, size.ID)

	payments := &store.PaymentStore{DB: db}
	slip, err := payments.SubmitSlip(ctx, order.ID, decimal.NewFromInt(100), "")
	if err != nil {
		t.Fatalf("Submit slip: %v", err)
	}

	result, err := payments.Verify(ctx, slip.ID, models.SlipStatusRejected, admin.ID)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}

	// Rejection sends the order back to PENDING.
	if result.OrderStatus != models.OrderStatusPending {
		t.Errorf("Expected order PENDING after rejection, got %s", result.OrderStatus)
	}
	if result.Slip.Status != models.SlipStatusRejected {
		t.Errorf("Expected slip REJECTED, got %s", result.Slip.Status)
	}
	if result.Slip.Verified {
		t.Error("Rejected slip must not be marked verified")
	}
}

func TestVerifyTwice(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	user := createTestUser(t, db, "decided@example.com")
	admin := createTestUser(t, db, "admin-decided@example.com")
	size := createTestSize(t, db, "M")
	category := createTestCategory(t, db, "Shirts")
	product := createTestProduct(t, db, category.ID, "PAY-005", 100, size.ID, 10)
	order := placeOrder(t, db, user.ID, product.ID, size.ID)

	payments := &store.PaymentStore{DB: db}
	slip, err := payments.SubmitSlip(ctx, order.ID, decimal.NewFromInt(100), "")
	if err != nil {
		t.Fatalf("Submit slip: %v", err)
	}

	if _, err := payments.Verify(ctx, slip.ID, models.SlipStatusApproved, admin.ID); err != nil {
		t.Fatalf("First verify: %v", err)
	}

	_, err = payments.Verify(ctx, slip.ID, models.SlipStatusRejected, admin.ID)
	if !errors.Is(err, database.ErrSlipAlreadyDecided) {
		t.Errorf("Expected ErrSlipAlreadyDecided, got %v", err)
	}

	// The conflicting decision must not have changed anything.
	fetched, err := payments.GetSlip(ctx, slip.ID)
	if err != nil {
		t.Fatalf("Get slip: %v", err)
	}
	if fetched.Status != models.SlipStatusApproved {
		t.Errorf("Expected slip to stay APPROVED, got %s", fetched.Status)
	}

	orders := &store.OrderStore{DB: db}
	status, err := orders.GetStatus(ctx, order.ID)
	if err != nil {
		t.Fatalf("Get status: %v", err)
	}
	if status != models.OrderStatusVerified {
		t.Errorf("Expected order to stay VERIFIED, got %s", status)
	}
}

func TestListPendingSlips(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	user := createTestUser(t, db, "pending-list@example.com")
	admin := createTestUser(t, db, "admin-pending@example.com")
	size := createTestSize(t, db, "M")
	category := createTestCategory(t, db, "Shirts")
	product := createTestProduct(t, db, category.ID, "PAY-006", 100, size.ID, 10)

	payments := &store.PaymentStore{DB: db}

	orderA := placeOrder(t, db, user.ID, product.ID, size.ID)
	slipA, err := payments.SubmitSlip(ctx, orderA.ID, decimal.NewFromInt(100), "")
	if err != nil {
		t.Fatalf("Submit slip A: %v", err)
	}
	if _, err := payments.Verify(ctx, slipA.ID, models.SlipStatusApproved, admin.ID); err != nil {
		t.Fatalf("Verify slip A: %v", err)
	}

	orderB := placeOrder(t, db, user.ID, product.ID, size.ID)
	slipB, err := payments.SubmitSlip(ctx, orderB.ID, decimal.NewFromInt(100), "")
	if err != nil {
		t.Fatalf("Submit slip B: %v", err)
	}

	page, err := payments.ListPendingSlips(ctx, 1, 20)
	if err != nil {
		t.Fatalf("List pending: %v", err)
	}
	slips := page.Items.([]models.PaymentSlip)
	if len(slips) != 1 {
		t.Fatalf("Expected 1 pending slip, got %d", len(slips))
	}
	if slips[0].ID != slipB.ID {
		t.Errorf("Expected pending slip %d, got %d", slipB.ID, slips[0].ID)
	}
}
