package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is a generic version of the entity-specific not found errors
	// (e.g., ErrStudentNotFound, ErrNodeNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a student with the same email).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrConcurrentModification is returned when a compare-and-append or
	// revision-guarded update loses the race against another writer. The
	// caller should re-read the latest state and retry.
	ErrConcurrentModification = errors.New("concurrent modification")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrStudentNotFound indicates that the requested student does not exist in the registry.
	ErrStudentNotFound = fmt.Errorf("%w: student", ErrNotFound)

	// ErrNodeNotFound indicates that the requested knowledge node does not exist.
	ErrNodeNotFound = fmt.Errorf("%w: knowledge node", ErrNotFound)

	// ErrBranchNotFound indicates that the requested branch edge does not exist.
	ErrBranchNotFound = fmt.Errorf("%w: branch edge", ErrNotFound)

	// ErrMasteryRecordNotFound indicates that the requested mastery record does not exist.
	ErrMasteryRecordNotFound = fmt.Errorf("%w: mastery record", ErrNotFound)

	// ErrGamificationStateNotFound indicates that the student has no gamification state yet.
	ErrGamificationStateNotFound = fmt.Errorf("%w: gamification state", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrEmailExists indicates that a student with the given email already exists.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
// This includes the generic ErrNotFound and all entity-specific not found errors.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// IsConcurrencyError checks if the error is a lost optimistic-concurrency race.
func IsConcurrencyError(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "student", "mastery record")
	Operation string // The operation that failed (e.g., "create", "append")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
