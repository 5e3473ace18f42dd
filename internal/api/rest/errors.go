package rest

import (
	"encoding/json"
	"net/http"
)

// APIError is the structured error body. Message is always a generic,
// client-safe string; internal detail stays in logs.
type APIError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

const (
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeNotFound       = "not_found"
	ErrCodeConflict       = "conflict"
	ErrCodeForbidden      = "forbidden"
	ErrCodeUnauthorized   = "unauthorized"
	ErrCodeUnavailable    = "unavailable"
	ErrCodeUpstream       = "upstream_error"
	ErrCodeInternal       = "internal_error"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, APIError{Error: code, Message: message})
}
