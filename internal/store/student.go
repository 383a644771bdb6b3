package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/nexuslearn/nexus-api/internal/domain"
)

// StudentRegistry defines the interface for student identity persistence.
// The engine consults it only to validate that an interaction belongs to a
// known student; registration and login are the auth layer's concern.
type StudentRegistry interface {
	// Create saves a new student to the registry, hashing the plaintext
	// password before storage. The Password field is cleared on success.
	// Returns ErrEmailExists if the email is already registered.
	// Returns validation errors from the domain Student if data is invalid.
	Create(ctx context.Context, student *domain.Student) error

	// GetByID retrieves a student by their unique ID.
	// Returns ErrStudentNotFound if the student does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Student, error)

	// GetByEmail retrieves a student by their email address.
	// Returns ErrStudentNotFound if the student does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.Student, error)

	// Update modifies an existing student's profile fields (display name,
	// grade level, domain focus). It does not change the password.
	// Returns ErrStudentNotFound if the student does not exist.
	Update(ctx context.Context, student *domain.Student) error
}
