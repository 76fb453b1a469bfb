package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/norraset/shopapi/internal/models"
	"github.com/norraset/shopapi/internal/store"
	"github.com/shopspring/decimal"
)

type ProductStore interface {
	Create(ctx context.Context, categoryID int64, sku, name, description string, price decimal.Decimal, sizes []store.SizeStockInput) (*models.Product, error)
	Get(ctx context.Context, id int64) (*models.Product, error)
	List(ctx context.Context, page, pageSize int) (*store.OffsetPage, error)
	Availability(ctx context.Context, productID, sizeID int64) (*models.ProductSize, error)
	Restock(ctx context.Context, productID, sizeID int64, quantity int) (*models.ProductSize, error)
}

type CategoryStore interface {
	Create(ctx context.Context, name string) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
}

type SizeStore interface {
	Create(ctx context.Context, label string) (*models.Size, error)
	List(ctx context.Context) ([]models.Size, error)
}

type CatalogHandler struct {
	Products   ProductStore
	Categories CategoryStore
	Sizes      SizeStore
}

func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CategoryID  int64   `json:"category_id"`
		SKU         string  `json:"sku"`
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		Sizes       []struct {
			SizeID int64 `json:"size_id"`
			Stock  int   `json:"stock"`
		} `json:"sizes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid request body")
		return
	}
	if req.SKU == "" || req.Name == "" {
		respondError(w, http.StatusBadRequest, CodeValidation, "sku and name are required")
		return
	}
	if req.Price < 0 {
		respondError(w, http.StatusBadRequest, CodeValidation, "price must not be negative")
		return
	}

	sizes := make([]store.SizeStockInput, 0, len(req.Sizes))
	for _, sz := range req.Sizes {
		if sz.Stock < 0 {
			respondError(w, http.StatusBadRequest, CodeValidation, "stock must not be negative")
			return
		}
		sizes = append(sizes, store.SizeStockInput{SizeID: sz.SizeID, Stock: sz.Stock})
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	product, err := h.Products.Create(ctx, req.CategoryID, req.SKU, req.Name, req.Description,
		decimal.NewFromFloat(req.Price), sizes)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, product)
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid product ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	product, err := h.Products.Get(ctx, id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	result, err := h.Products.List(ctx, page, pageSize)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *CatalogHandler) Availability(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid product ID")
		return
	}
	sizeID, ok := pathID(r, "sizeID")
	if !ok {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid size ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Products.Availability(ctx, productID, sizeID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ps)
}

func (h *CatalogHandler) Restock(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid product ID")
		return
	}
	sizeID, ok := pathID(r, "sizeID")
	if !ok {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid size ID")
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid request body")
		return
	}
	if req.Quantity <= 0 {
		respondError(w, http.StatusBadRequest, CodeValidation, "quantity must be positive")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ps, err := h.Products.Restock(ctx, productID, sizeID, req.Quantity)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ps)
}

func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		respondError(w, http.StatusBadRequest, CodeValidation, "name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	category, err := h.Categories.Create(ctx, req.Name)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, category)
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	categories, err := h.Categories.List(ctx)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, categories)
}

func (h *CatalogHandler) CreateSize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label string `json:"label"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Label == "" {
		respondError(w, http.StatusBadRequest, CodeValidation, "label is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	size, err := h.Sizes.Create(ctx, req.Label)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, size)
}

func (h *CatalogHandler) ListSizes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	sizes, err := h.Sizes.List(ctx)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, sizes)
}
