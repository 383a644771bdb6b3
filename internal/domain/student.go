package domain

import (
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Student
var (
	ErrStudentIDEmpty          = errors.New("student ID cannot be empty")
	ErrStudentEmailEmpty       = errors.New("student email cannot be empty")
	ErrStudentEmailInvalid     = errors.New("student email is invalid")
	ErrStudentNameEmpty        = errors.New("student display name cannot be empty")
	ErrStudentGradeLevelRange  = errors.New("student grade level must be between 1 and 12")
	ErrStudentPasswordTooShort = errors.New("student password must be at least 12 characters")
	ErrStudentPasswordTooLong  = errors.New("student password must be at most 72 characters")
)

// Password length constraints. The upper bound is the bcrypt input limit.
const (
	MinPasswordLength = 12
	MaxPasswordLength = 72
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Student represents a learner in the student registry. The registry owns
// identity and profile data; the engine only consults it to validate that
// an interaction belongs to a known student and to read the grade level
// and domain focus used by the nexus fit component.
type Student struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	DisplayName    string    `json:"display_name"`
	GradeLevel     int       `json:"grade_level"`
	DomainFocus    string    `json:"domain_focus"` // Current curriculum domain the student is working in
	HashedPassword string    `json:"-"`            // Stored hash, never serialized
	Password       string    `json:"-"`            // Plaintext, only held between request decode and hashing
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewStudent creates a new Student with a generated ID and UTC timestamps.
// The password is carried in plaintext until the registry store hashes it.
func NewStudent(email, displayName, password string, gradeLevel int, domainFocus string) (*Student, error) {
	now := time.Now().UTC()
	student := &Student{
		ID:          uuid.New(),
		Email:       email,
		DisplayName: displayName,
		Password:    password,
		GradeLevel:  gradeLevel,
		DomainFocus: domainFocus,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := student.Validate(); err != nil {
		return nil, err
	}

	return student, nil
}

// Validate checks that the Student has valid data.
// Returns a specific validation error for the first failing field.
func (s *Student) Validate() error {
	if s.ID == uuid.Nil {
		return ErrStudentIDEmpty
	}

	if s.Email == "" {
		return ErrStudentEmailEmpty
	}

	if !emailRegex.MatchString(s.Email) {
		return ErrStudentEmailInvalid
	}

	if s.DisplayName == "" {
		return ErrStudentNameEmpty
	}

	if s.GradeLevel < 1 || s.GradeLevel > 12 {
		return ErrStudentGradeLevelRange
	}

	// Password rules only apply while the plaintext is present; a student
	// loaded from the store carries only the hash.
	if s.Password != "" {
		if len(s.Password) < MinPasswordLength {
			return ErrStudentPasswordTooShort
		}
		if len(s.Password) > MaxPasswordLength {
			return ErrStudentPasswordTooLong
		}
	}

	return nil
}
