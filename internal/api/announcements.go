package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/norraset/shopapi/internal/models"
	"github.com/norraset/shopapi/internal/store"
)

type AnnouncementStore interface {
	Create(ctx context.Context, title, body string, published bool) (*models.Announcement, error)
	Get(ctx context.Context, id int64) (*models.Announcement, error)
	List(ctx context.Context, publishedOnly bool, page, pageSize int) (*store.OffsetPage, error)
	Update(ctx context.Context, id int64, title, body string, published bool) (*models.Announcement, error)
	Delete(ctx context.Context, id int64) error
}

type AnnouncementsHandler struct {
	Store AnnouncementStore
}

type announcementRequest struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	Published bool   `json:"published"`
}

func (h *AnnouncementsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req announcementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid request body")
		return
	}
	if req.Title == "" || req.Body == "" {
		respondError(w, http.StatusBadRequest, CodeValidation, "title and body are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	a, err := h.Store.Create(ctx, req.Title, req.Body, req.Published)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, a)
}

func (h *AnnouncementsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid announcement ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	a, err := h.Store.Get(ctx, id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, a)
}

func (h *AnnouncementsHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	publishedOnly := r.URL.Query().Get("published") == "true"

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	result, err := h.Store.List(ctx, publishedOnly, page, pageSize)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *AnnouncementsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid announcement ID")
		return
	}

	var req announcementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid request body")
		return
	}
	if req.Title == "" || req.Body == "" {
		respondError(w, http.StatusBadRequest, CodeValidation, "title and body are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	a, err := h.Store.Update(ctx, id, req.Title, req.Body, req.Published)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, a)
}

func (h *AnnouncementsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid announcement ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Store.Delete(ctx, id); err != nil {
		respondStoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
