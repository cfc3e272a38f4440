package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/apperrors"
)

// ApiResponse wraps data in the format expected by the frontend.
type ApiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(ApiResponse{
		Success: false,
		Error:   errorCode,
		Message: message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// serviceError maps service-layer sentinels onto HTTP status codes and
// stable error codes the frontend keys off.
func serviceError(w http.ResponseWriter, err error) error {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return ErrorResponse(w, http.StatusNotFound, "not_found", "Resource not found")
	case errors.Is(err, apperrors.ErrConflict):
		return ErrorResponse(w, http.StatusConflict, "conflict", "A resource with that name already exists")
	case errors.Is(err, apperrors.ErrNoActiveConnection):
		return ErrorResponse(w, http.StatusConflict, "no_active_connection", "No active connection; activate one first")
	case errors.Is(err, apperrors.ErrRejected):
		return ErrorResponse(w, http.StatusBadRequest, "rejected", err.Error())
	case errors.Is(err, apperrors.ErrCredentialsKeyMismatch):
		return ErrorResponse(w, http.StatusConflict, "credentials_key_mismatch",
			"Stored credentials cannot be decrypted; update the connection password")
	case errors.Is(err, apperrors.ErrUnauthorized):
		return ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Invalid credentials")
	default:
		return ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}
