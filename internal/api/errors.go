package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/nexuslearn/nexus-api/internal/api/shared"
	"github.com/nexuslearn/nexus-api/internal/service"
	"github.com/nexuslearn/nexus-api/internal/service/auth"
	"github.com/nexuslearn/nexus-api/internal/store"
)

// genericErrorMessage is the safe message for errors no sentinel matches.
const genericErrorMessage = "An unexpected error occurred"

// HandleAPIError maps an internal error to its HTTP status and safe
// message and writes the response. A non-empty fallbackMessage is used
// only when the error maps to no known sentinel; mapped errors always
// keep their own safe message so the client can tell a missing node from
// a conflicting choice.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if message == genericErrorMessage && fallbackMessage != "" {
		message = fallbackMessage
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// MapErrorToStatusCode maps internal errors to appropriate HTTP status
// codes based on the error type. This prevents leaking internal error
// types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists):
		return http.StatusConflict

	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict

	// Not found errors
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Corrupt stored state is a server-side problem
	case errors.Is(err, service.ErrInvariantViolation):
		return http.StatusInternalServerError

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return genericErrorMessage
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid email or password"

	// Not found errors
	case errors.Is(err, service.ErrStudentNotFound):
		return "Student not found"

	case errors.Is(err, service.ErrNodeNotFound):
		return "Knowledge node not found"

	case errors.Is(err, service.ErrBranchNotFound):
		return "Branch not found"

	case errors.Is(err, service.ErrNotFound), errors.Is(err, store.ErrNotFound):
		return "Not found"

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, service.ErrBranchAlreadyChosen):
		return "A conflicting branch has already been chosen"

	case errors.Is(err, service.ErrConcurrentModification):
		return "The record was modified concurrently, please retry"

	// Bad request errors
	case errors.Is(err, service.ErrBranchNotAvailable):
		return "Branch is not available yet"

	case errors.Is(err, service.ErrInvalidForecast):
		return "Forecast days cannot be negative"

	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	// Default case for unknown errors
	default:
		return genericErrorMessage
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example format: "Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "gte":
		return "value too small"
	case "lte":
		return "value too large"
	default:
		return "validation failed"
	}
}
