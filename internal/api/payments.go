package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/norraset/shopapi/internal/cache"
	"github.com/norraset/shopapi/internal/models"
	"github.com/norraset/shopapi/internal/store"
	"github.com/shopspring/decimal"
)

type PaymentStore interface {
	SubmitSlip(ctx context.Context, orderID int64, amount decimal.Decimal, imageURL string) (*models.PaymentSlip, error)
	Verify(ctx context.Context, slipID int64, decision models.SlipStatus, verifierID int64) (*store.VerificationResult, error)
	ListPendingSlips(ctx context.Context, page, pageSize int) (*store.OffsetPage, error)
}

type PaymentsHandler struct {
	Store       PaymentStore
	StatusCache *cache.OrderStatus
}

func (h *PaymentsHandler) SubmitSlip(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid order ID")
		return
	}

	var req struct {
		Amount   float64 `json:"amount"`
		ImageURL string  `json:"image_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid request body")
		return
	}
	if req.Amount <= 0 {
		respondError(w, http.StatusBadRequest, CodeValidation, "amount must be positive")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	slip, err := h.Store.SubmitSlip(ctx, orderID, decimal.NewFromFloat(req.Amount), req.ImageURL)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	h.StatusCache.Set(ctx, orderID, models.OrderStatusPaid)

	respondJSON(w, http.StatusCreated, slip)
}

// Verify applies an admin decision. The verifier identity comes from the
// request context, never from the body.
func (h *PaymentsHandler) Verify(w http.ResponseWriter, r *http.Request) {
	verifierID, ok := requireActor(w, r)
	if !ok {
		return
	}

	slipID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid slip ID")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid request body")
		return
	}

	decision := models.SlipStatus(req.Status)
	if decision != models.SlipStatusApproved && decision != models.SlipStatusRejected {
		respondError(w, http.StatusBadRequest, CodeValidation, "status must be APPROVED or REJECTED")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	result, err := h.Store.Verify(ctx, slipID, decision, verifierID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	h.StatusCache.Set(ctx, result.Slip.OrderID, result.OrderStatus)

	respondJSON(w, http.StatusOK, result)
}

func (h *PaymentsHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	result, err := h.Store.ListPendingSlips(ctx, page, pageSize)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
