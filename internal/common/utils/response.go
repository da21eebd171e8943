// internal/common/utils/response.go
// Standardized API responses ensure consistency across all endpoints

package utils

import (
	"encoding/json"
	"net/http"

	"github.com/solacelink/solace-backend/internal/common/apperrors"
)

// Response is the standard API response structure
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// SuccessResponse sends a successful response
func SuccessResponse(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	json.NewEncoder(w).Encode(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse sends an error response
func ErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	json.NewEncoder(w).Encode(Response{
		Success: false,
		Error:   message,
	})
}

// MessageResponse sends a simple message response
func MessageResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	json.NewEncoder(w).Encode(Response{
		Success: true,
		Message: message,
	})
}

// ErrorFromTaxonomy maps a service error to its HTTP status and responds.
func ErrorFromTaxonomy(w http.ResponseWriter, err error) {
	switch {
	case apperrors.IsValidation(err):
		ErrorResponse(w, http.StatusBadRequest, err.Error())
	case apperrors.IsConflict(err):
		ErrorResponse(w, http.StatusConflict, err.Error())
	case apperrors.IsForbidden(err):
		ErrorResponse(w, http.StatusForbidden, err.Error())
	case apperrors.IsNotFound(err):
		ErrorResponse(w, http.StatusNotFound, err.Error())
	default:
		ErrorResponse(w, http.StatusInternalServerError, "internal server error")
	}
}
