package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/norraset/shopapi/internal/cache"
	"github.com/norraset/shopapi/internal/models"
	"github.com/norraset/shopapi/internal/store"
)

type OrderStore interface {
	Checkout(ctx context.Context, userID int64) (*models.Order, error)
	Get(ctx context.Context, id int64) (*models.Order, error)
	GetStatus(ctx context.Context, id int64) (models.OrderStatus, error)
	ListByUserCursor(ctx context.Context, userID int64, cursor string, limit int) (*store.CursorPage, error)
}

type ShippingStore interface {
	Upsert(ctx context.Context, orderID int64, in store.ShippingInput) (*models.ShippingInfo, error)
	Labels(ctx context.Context) ([]models.ShippingLabel, error)
}

type OrdersHandler struct {
	Orders      OrderStore
	Shipping    ShippingStore
	StatusCache *cache.OrderStatus
}

func (h *OrdersHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireActor(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	order, err := h.Orders.Checkout(ctx, userID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	h.StatusCache.Set(ctx, order.ID, order.Status)

	respondJSON(w, http.StatusCreated, order)
}

func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid order ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	order, err := h.Orders.Get(ctx, id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}

// Status serves the hot polling path through the cache, falling back to the
// database and refilling the cache on a miss.
func (h *OrdersHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid order ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if status, hit := h.StatusCache.Get(ctx, id); hit {
		respondJSON(w, http.StatusOK, map[string]models.OrderStatus{"status": status})
		return
	}

	status, err := h.Orders.GetStatus(ctx, id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	h.StatusCache.Set(ctx, id, status)
	respondJSON(w, http.StatusOK, map[string]models.OrderStatus{"status": status})
}

func (h *OrdersHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		// fall back to the caller's own orders
		var ok bool
		userID, ok = requireActor(w, r)
		if !ok {
			return
		}
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	page, err := h.Orders.ListByUserCursor(ctx, userID, r.URL.Query().Get("cursor"), limit)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, page)
}

func (h *OrdersHandler) UpsertShipping(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid order ID")
		return
	}

	var req store.ShippingInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid request body")
		return
	}
	if req.Name == "" || req.Phone == "" || req.Address == "" || req.Zipcode == "" {
		respondError(w, http.StatusBadRequest, CodeValidation, "name, phone, address and zipcode are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	info, err := h.Shipping.Upsert(ctx, id, req)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (h *OrdersHandler) ShippingLabels(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	labels, err := h.Shipping.Labels(ctx)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, labels)
}
