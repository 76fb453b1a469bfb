package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/norraset/shopapi/internal/models"
	"github.com/norraset/shopapi/internal/store"
)

type UserStore interface {
	Create(ctx context.Context, email, name, role string) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, page, pageSize int) (*store.OffsetPage, error)
}

type UsersHandler struct {
	Store UserStore
}

func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Role  string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid request body")
		return
	}
	if req.Email == "" || req.Name == "" {
		respondError(w, http.StatusBadRequest, CodeValidation, "email and name are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, err := h.Store.Create(ctx, req.Email, req.Name, req.Role)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid user ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	user, err := h.Store.Get(ctx, id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	result, err := h.Store.List(ctx, page, pageSize)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
