package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for
// with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in service-specific error types
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrNotFound is the kind behind every missing-entity error.
	// API layer should map this to HTTP 404 Not Found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the caller supplied data the engine
	// cannot accept. API layer should map this to HTTP 400 Bad Request.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict indicates the request is valid but collides with the
	// current state. API layer should map this to HTTP 409 Conflict.
	ErrConflict = errors.New("conflict")

	// ErrInvariantViolation indicates stored data that should be
	// impossible, such as a review due date preceding its last review.
	// API layer should map this to HTTP 500.
	ErrInvariantViolation = errors.New("invariant violation")
)

// Specific conditions, each wrapping its kind so callers can match either.
var (
	// ErrStudentNotFound indicates the student does not exist.
	ErrStudentNotFound = fmt.Errorf("%w: student", ErrNotFound)

	// ErrNodeNotFound indicates the knowledge node does not exist.
	ErrNodeNotFound = fmt.Errorf("%w: knowledge node", ErrNotFound)

	// ErrBranchNotFound indicates the branch edge does not exist.
	ErrBranchNotFound = fmt.Errorf("%w: branch", ErrNotFound)

	// ErrBranchNotAvailable indicates the branch is still locked for the
	// student.
	ErrBranchNotAvailable = fmt.Errorf("%w: branch is not available", ErrInvalidInput)

	// ErrBranchAlreadyChosen indicates an exclusive decision node where a
	// different sibling branch has already been chosen.
	ErrBranchAlreadyChosen = fmt.Errorf("%w: a conflicting branch is already chosen", ErrConflict)

	// ErrInvalidForecast indicates a negative review forecast horizon.
	ErrInvalidForecast = fmt.Errorf("%w: forecast days cannot be negative", ErrInvalidInput)

	// ErrConcurrentModification indicates the write retry budget was
	// exhausted without landing an append.
	ErrConcurrentModification = fmt.Errorf("%w: concurrent modification", ErrConflict)
)

// ServiceError wraps errors from the engine services with additional
// context. This allows consumers to differentiate between different types
// of service errors using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "record_interaction")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a ServiceError for the given operation.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
