package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"gearbook/internal/docstore"
	"gearbook/internal/registry"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest  = "bad_request"
	ErrCodeNotFound    = "not_found"
	ErrCodeConflict    = "conflict"
	ErrCodeInternal    = "internal_error"
	ErrCodeValidation  = "validation_error"
	ErrCodeUnavailable = "storage_unavailable"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeConflict writes a 409 error response.
func writeConflict(w http.ResponseWriter, message string) {
	writeError(w, http.StatusConflict, ErrCodeConflict, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeRegistryError maps registry and storage errors to HTTP responses.
//
// Validation errors map to 400, missing records to 404, duplicate or
// in-use conflicts to 409, and storage outages to 503. Anything else
// is a 500 with a generic message so internal details never leak.
func writeRegistryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registry.ErrInvalidDevice), errors.Is(err, registry.ErrInvalidUser):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
	case errors.Is(err, registry.ErrDeviceNotFound):
		writeNotFound(w, "device not found")
	case errors.Is(err, registry.ErrUserNotFound):
		writeNotFound(w, "user not found")
	case errors.Is(err, registry.ErrNotAssigned):
		writeNotFound(w, "device is not assigned to this user")
	case errors.Is(err, registry.ErrDeviceExists):
		writeConflict(w, "device already exists")
	case errors.Is(err, registry.ErrUserExists):
		writeConflict(w, "user already exists")
	case errors.Is(err, registry.ErrDeviceInUse):
		writeConflict(w, "device is already in use")
	case errors.Is(err, docstore.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "storage unavailable")
	default:
		writeInternalError(w, "internal server error")
	}
}
