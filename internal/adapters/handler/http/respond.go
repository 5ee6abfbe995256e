package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/spine/api/internal/core/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// writeError collapses every auth failure into its wire-level class and
// hides storage errors behind a generic message so no internal detail
// leaks to the caller.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrUnauthenticated):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, domain.ErrDuplicateIdentity):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrBookNotFound),
		errors.Is(err, domain.ErrListNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, domain.ErrInternal.Error(), http.StatusInternalServerError)
	}
}
