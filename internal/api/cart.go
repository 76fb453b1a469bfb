package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/norraset/shopapi/internal/models"
)

type CartStore interface {
	AddItem(ctx context.Context, userID, productID, sizeID int64, quantity int) (*models.CartItem, error)
	Get(ctx context.Context, userID int64) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, itemID int64) error
	Clear(ctx context.Context, userID int64) error
}

type CartHandler struct {
	Store CartStore
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req struct {
		ProductID int64 `json:"product_id"`
		SizeID    int64 `json:"size_id"`
		Quantity  int   `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid request body")
		return
	}
	if req.ProductID <= 0 || req.SizeID <= 0 {
		respondError(w, http.StatusBadRequest, CodeValidation, "product_id and size_id are required")
		return
	}
	if req.Quantity <= 0 {
		respondError(w, http.StatusBadRequest, CodeValidation, "quantity must be positive")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.Store.AddItem(ctx, userID, req.ProductID, req.SizeID, req.Quantity)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, item)
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireActor(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	cart, err := h.Store.Get(ctx, userID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireActor(w, r)
	if !ok {
		return
	}

	itemID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid cart item ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Store.RemoveItem(ctx, userID, itemID); err != nil {
		respondStoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireActor(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Store.Clear(ctx, userID); err != nil {
		respondStoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
