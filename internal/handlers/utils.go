package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/oshawa-skills/apiserver/internal/services"
	"github.com/oshawa-skills/apiserver/internal/store"
	"github.com/oshawa-skills/apiserver/types"
)

type contextKey string

const contextClaimsKey contextKey = "claims"

// SuccessResponse is the envelope for every successful response.
type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// ErrorResponse is the envelope for every failed response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, SuccessResponse{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Success: false, Error: message})
}

func claimsFromContext(ctx context.Context) (types.Claims, bool) {
	claims, ok := ctx.Value(contextClaimsKey).(types.Claims)
	return claims, ok
}

// writeServiceError maps service-layer errors onto the HTTP taxonomy.
// Unrecognized errors become a 500 with the fallback message so internal
// detail never leaks to clients.
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	var invalid *services.ValidationError
	switch {
	case errors.As(err, &invalid):
		writeError(w, http.StatusBadRequest, invalid.Message)
	case errors.Is(err, store.ErrNotPending):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotOwner):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
