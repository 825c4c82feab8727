package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/yourorg/itemvault/internal/domain"
)

// ErrorResponse represents an error response body
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeDomainError maps a domain error to its HTTP response. Anything not in
// the taxonomy is an infrastructure failure: the client gets a generic 500,
// the detail stays in the logs.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, validationMessage(err))
	case errors.Is(err, domain.ErrDuplicateUsername):
		writeError(w, http.StatusConflict, "Username already taken")
	case errors.Is(err, domain.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "Email already registered")
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Item not found")
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func validationMessage(err error) string {
	if detail, ok := strings.CutPrefix(err.Error(), domain.ErrValidation.Error()+": "); ok {
		return detail
	}
	return "Invalid request"
}
