package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/norraset/shopapi/internal/database"
	"github.com/norraset/shopapi/internal/models"
)

// Machine-readable error codes returned alongside HTTP statuses so clients
// do not have to parse message strings.
const (
	CodeValidation        = "VALIDATION"
	CodeNotFound          = "NOT_FOUND"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeCartEmpty         = "CART_EMPTY"
	CodeConflict          = "CONFLICT"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeInternal          = "INTERNAL"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}

// respondStoreError maps store sentinels onto the HTTP error taxonomy.
// Unrecognized errors become a generic 500 so internals never leak.
func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrUserNotFound),
		errors.Is(err, database.ErrCategoryNotFound),
		errors.Is(err, database.ErrProductNotFound),
		errors.Is(err, database.ErrSizeNotFound),
		errors.Is(err, database.ErrOrderNotFound),
		errors.Is(err, database.ErrSlipNotFound),
		errors.Is(err, database.ErrAnnouncementNotFound),
		errors.Is(err, database.ErrCartItemNotFound):
		respondError(w, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, database.ErrInsufficientStock):
		respondError(w, http.StatusBadRequest, CodeInsufficientStock, err.Error())
	case errors.Is(err, database.ErrCartEmpty):
		respondError(w, http.StatusBadRequest, CodeCartEmpty, err.Error())
	case errors.Is(err, database.ErrSlipExists),
		errors.Is(err, database.ErrSlipAlreadyDecided):
		respondError(w, http.StatusConflict, CodeConflict, err.Error())
	case errors.Is(err, models.ErrInvalidTransition):
		respondError(w, http.StatusConflict, CodeInvalidTransition, err.Error())
	default:
		log.Printf("internal error: %v", err)
		respondError(w, http.StatusInternalServerError, CodeInternal, "internal error")
	}
}
