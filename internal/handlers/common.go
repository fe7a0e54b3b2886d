package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"couply-backend/internal/moderation"
	"couply-backend/internal/services"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

// decodeValid decodes a JSON request body and validates it
func decodeValid(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return validate.Struct(v)
}

// respondServiceError maps service errors to HTTP status codes
func respondServiceError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		statusCode = http.StatusUnauthorized
	case errors.Is(err, services.ErrEmailNotVerified),
		errors.Is(err, services.ErrNotInvitee),
		errors.Is(err, services.ErrNotMember):
		statusCode = http.StatusForbidden
	case errors.Is(err, services.ErrPartnerNotFound):
		statusCode = http.StatusNotFound
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrAlreadyLinked),
		errors.Is(err, services.ErrPartnerAlreadyLinked),
		errors.Is(err, services.ErrSelfPair),
		errors.Is(err, services.ErrNotLinked),
		errors.Is(err, services.ErrInviteNotPending):
		statusCode = http.StatusConflict
	case errors.Is(err, services.ErrInviteExpired):
		statusCode = http.StatusGone
	case errors.Is(err, services.ErrVerificationExpired),
		errors.Is(err, services.ErrVerificationUsed):
		statusCode = http.StatusBadRequest
	case errors.Is(err, moderation.ErrBlocked):
		statusCode = http.StatusUnprocessableEntity
	case errors.Is(err, moderation.ErrUnavailable):
		statusCode = http.StatusServiceUnavailable
	}

	message := err.Error()
	if statusCode == http.StatusInternalServerError {
		message = "internal server error"
	}
	respondError(w, message, statusCode)
}
