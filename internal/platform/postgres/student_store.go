package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/nexuslearn/nexus-api/internal/domain"
	"github.com/nexuslearn/nexus-api/internal/platform/logger"
	"github.com/nexuslearn/nexus-api/internal/store"
)

// PostgresStudentRegistry implements the store.StudentRegistry interface
// using a PostgreSQL database as the storage backend.
type PostgresStudentRegistry struct {
	db         store.DBTX
	logger     *slog.Logger
	bcryptCost int
}

// NewPostgresStudentRegistry creates a new PostgreSQL implementation of the
// StudentRegistry interface. A bcryptCost of 0 falls back to the library
// default. If logger is nil, a default logger will be used.
func NewPostgresStudentRegistry(db store.DBTX, logger *slog.Logger, bcryptCost int) *PostgresStudentRegistry {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}

	return &PostgresStudentRegistry{
		db:         db,
		logger:     logger.With(slog.String("component", "student_registry")),
		bcryptCost: bcryptCost,
	}
}

// Ensure PostgresStudentRegistry implements store.StudentRegistry interface
var _ store.StudentRegistry = (*PostgresStudentRegistry)(nil)

// Create implements store.StudentRegistry.Create
// It hashes the plaintext password before storage and clears it on success.
// Returns store.ErrEmailExists if the email is already registered.
func (r *PostgresStudentRegistry) Create(ctx context.Context, student *domain.Student) error {
	log := logger.FromContextOrDefault(ctx, r.logger)

	if err := student.Validate(); err != nil {
		log.Warn("student validation failed during create",
			slog.String("error", err.Error()),
			slog.String("student_id", student.ID.String()))
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(student.Password), r.bcryptCost)
	if err != nil {
		log.Error("failed to hash password",
			slog.String("error", err.Error()),
			slog.String("student_id", student.ID.String()))
		return fmt.Errorf("failed to hash password: %w", err)
	}
	student.HashedPassword = string(hashed)

	query := `
		INSERT INTO students (id, email, display_name, grade_level, domain_focus, hashed_password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.db.ExecContext(
		ctx,
		query,
		student.ID,
		student.Email,
		student.DisplayName,
		student.GradeLevel,
		student.DomainFocus,
		student.HashedPassword,
		student.CreatedAt,
		student.UpdatedAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("duplicate email during student creation",
				slog.String("student_id", student.ID.String()))
			return fmt.Errorf("%w: %v", store.ErrEmailExists, err)
		}

		log.Error("failed to create student",
			slog.String("error", err.Error()),
			slog.String("student_id", student.ID.String()))
		return MapError(err)
	}

	student.Password = ""

	log.Info("student created successfully",
		slog.String("student_id", student.ID.String()),
		slog.Int("grade_level", student.GradeLevel))
	return nil
}

// GetByID implements store.StudentRegistry.GetByID
// Returns store.ErrStudentNotFound if the student does not exist.
func (r *PostgresStudentRegistry) GetByID(ctx context.Context, id uuid.UUID) (*domain.Student, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	query := `
		SELECT id, email, display_name, grade_level, domain_focus, hashed_password, created_at, updated_at
		FROM students
		WHERE id = $1
	`

	student, err := r.scanStudent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("student not found", slog.String("student_id", id.String()))
			return nil, store.ErrStudentNotFound
		}
		log.Error("failed to get student by ID",
			slog.String("error", err.Error()),
			slog.String("student_id", id.String()))
		return nil, MapError(err)
	}

	return student, nil
}

// GetByEmail implements store.StudentRegistry.GetByEmail
// Returns store.ErrStudentNotFound if the student does not exist.
func (r *PostgresStudentRegistry) GetByEmail(ctx context.Context, email string) (*domain.Student, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	query := `
		SELECT id, email, display_name, grade_level, domain_focus, hashed_password, created_at, updated_at
		FROM students
		WHERE email = $1
	`

	student, err := r.scanStudent(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("student not found by email")
			return nil, store.ErrStudentNotFound
		}
		log.Error("failed to get student by email",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return student, nil
}

// Update implements store.StudentRegistry.Update
// It modifies profile fields only; the password and email are untouched.
// Returns store.ErrStudentNotFound if the student does not exist.
func (r *PostgresStudentRegistry) Update(ctx context.Context, student *domain.Student) error {
	log := logger.FromContextOrDefault(ctx, r.logger)

	if err := student.Validate(); err != nil {
		log.Warn("student validation failed during update",
			slog.String("error", err.Error()),
			slog.String("student_id", student.ID.String()))
		return err
	}

	updatedAt := time.Now().UTC()

	query := `
		UPDATE students
		SET display_name = $1, grade_level = $2, domain_focus = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		student.DisplayName,
		student.GradeLevel,
		student.DomainFocus,
		updatedAt,
		student.ID,
	)

	if err != nil {
		log.Error("failed to update student",
			slog.String("error", err.Error()),
			slog.String("student_id", student.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "student"); err != nil {
		log.Debug("student not found for update",
			slog.String("student_id", student.ID.String()))
		return store.ErrStudentNotFound
	}

	student.UpdatedAt = updatedAt

	log.Info("student updated successfully",
		slog.String("student_id", student.ID.String()))
	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan logic.
type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresStudentRegistry) scanStudent(row rowScanner) (*domain.Student, error) {
	var student domain.Student
	err := row.Scan(
		&student.ID,
		&student.Email,
		&student.DisplayName,
		&student.GradeLevel,
		&student.DomainFocus,
		&student.HashedPassword,
		&student.CreatedAt,
		&student.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &student, nil
}
