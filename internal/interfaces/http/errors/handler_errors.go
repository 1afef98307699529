package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/manorfm/scholarship-auth/internal/domain"
)

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details map[string][]string `json:"details,omitempty"`
}

func getStatus(err domain.Error) int {
	switch err.GetCode() {
	case domain.ErrInvalidCredentials.GetCode(),
		domain.ErrAccountInactive.GetCode(),
		domain.ErrUnauthorized.GetCode(),
		domain.ErrInvalidToken.GetCode(),
		domain.ErrTokenExpired.GetCode():
		return http.StatusUnauthorized
	case domain.ErrUserNotFound.GetCode():
		return http.StatusNotFound
	case domain.ErrCodeAlreadyConsumed.GetCode():
		return http.StatusConflict
	case domain.ErrTooManyRequests.GetCode():
		return http.StatusTooManyRequests
	case domain.ErrDeliveryFailed.GetCode(),
		domain.ErrTokenGeneration.GetCode(),
		domain.ErrInvalidKeyConfig.GetCode(),
		domain.ErrDatabaseQuery.GetCode(),
		domain.ErrInternal.GetCode():
		return http.StatusInternalServerError
	}

	return http.StatusBadRequest
}

// RespondWithError sends a standardized error response
func RespondWithError(w http.ResponseWriter, err domain.Error) {
	var details map[string][]string
	if verr, ok := err.(*domain.ValidationError); ok {
		details = verr.Fields
	}
	RespondErrorWithDetails(w, err, details)
}

// RespondErrorWithDetails sends a standardized error response with details
func RespondErrorWithDetails(w http.ResponseWriter, err domain.Error, details map[string][]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(getStatus(err))
	json.NewEncoder(w).Encode(ErrorResponse{
		Code:    err.GetCode(),
		Message: err.GetMessage(),
		Details: details,
	})
}

// Respond renders any error. Errors outside the domain taxonomy become ErrInternal.
// It reports whether err was a domain error.
func Respond(w http.ResponseWriter, err error) bool {
	var derr domain.Error
	if errors.As(err, &derr) {
		RespondWithError(w, derr)
		return true
	}
	RespondWithError(w, domain.ErrInternal)
	return false
}
