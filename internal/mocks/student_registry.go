package mocks

import (
	"context"

	"github.com/google/uuid"

	"github.com/nexuslearn/nexus-api/internal/domain"
	"github.com/nexuslearn/nexus-api/internal/store"
)

// MockStudentRegistry implements store.StudentRegistry for testing.
type MockStudentRegistry struct {
	// Function fields for customizable behavior
	CreateFn     func(ctx context.Context, student *domain.Student) error
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.Student, error)
	GetByEmailFn func(ctx context.Context, email string) (*domain.Student, error)
	UpdateFn     func(ctx context.Context, student *domain.Student) error

	// Data for the default implementation, keyed by email
	Students        map[string]*domain.Student
	LastStudentID   uuid.UUID
	CreateError     error
	GetByEmailError error
}

// NewMockStudentRegistry creates a new mock registry with initialized defaults.
func NewMockStudentRegistry() *MockStudentRegistry {
	return &MockStudentRegistry{
		Students: make(map[string]*domain.Student),
	}
}

// Create implements the StudentRegistry interface. The default behavior
// mimics the real store: it fake-hashes the password and rejects duplicate
// emails.
func (m *MockStudentRegistry) Create(ctx context.Context, student *domain.Student) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, student)
	}

	if m.CreateError != nil {
		return m.CreateError
	}

	if _, exists := m.Students[student.Email]; exists {
		return store.ErrEmailExists
	}

	student.HashedPassword = "hashed:" + student.Password
	student.Password = ""
	m.Students[student.Email] = student
	m.LastStudentID = student.ID
	return nil
}

// GetByID implements the StudentRegistry interface.
func (m *MockStudentRegistry) GetByID(ctx context.Context, id uuid.UUID) (*domain.Student, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	for _, student := range m.Students {
		if student.ID == id {
			return student, nil
		}
	}

	return nil, store.ErrStudentNotFound
}

// GetByEmail implements the StudentRegistry interface.
func (m *MockStudentRegistry) GetByEmail(ctx context.Context, email string) (*domain.Student, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}

	if m.GetByEmailError != nil {
		return nil, m.GetByEmailError
	}

	student, exists := m.Students[email]
	if !exists {
		return nil, store.ErrStudentNotFound
	}

	return student, nil
}

// Update implements the StudentRegistry interface.
func (m *MockStudentRegistry) Update(ctx context.Context, student *domain.Student) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, student)
	}

	for email, existing := range m.Students {
		if existing.ID == student.ID {
			if email != student.Email {
				if _, exists := m.Students[student.Email]; exists {
					return store.ErrEmailExists
				}
				delete(m.Students, email)
			}
			m.Students[student.Email] = student
			return nil
		}
	}

	return store.ErrStudentNotFound
}
