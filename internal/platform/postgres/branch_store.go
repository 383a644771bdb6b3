package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/nexuslearn/nexus-api/internal/domain"
	"github.com/nexuslearn/nexus-api/internal/platform/logger"
	"github.com/nexuslearn/nexus-api/internal/store"
)

// PostgresBranchStore implements the store.BranchStore interface using a
// PostgreSQL database as the storage backend.
type PostgresBranchStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresBranchStore creates a new PostgreSQL implementation of the
// BranchStore interface. If logger is nil, a default logger will be used.
func NewPostgresBranchStore(db store.DBTX, logger *slog.Logger) *PostgresBranchStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresBranchStore{
		db:     db,
		logger: logger.With(slog.String("component", "branch_store")),
	}
}

// Ensure PostgresBranchStore implements store.BranchStore interface
var _ store.BranchStore = (*PostgresBranchStore)(nil)

// ListUnlocks implements store.BranchStore.ListUnlocks
func (s *PostgresBranchStore) ListUnlocks(ctx context.Context, studentID uuid.UUID) ([]*domain.BranchUnlock, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT student_id, branch_id, unlocked_at
		FROM branch_unlocks
		WHERE student_id = $1
		ORDER BY unlocked_at
	`

	rows, err := s.db.QueryContext(ctx, query, studentID)
	if err != nil {
		log.Error("failed to query branch unlocks",
			slog.String("error", err.Error()),
			slog.String("student_id", studentID.String()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	var unlocks []*domain.BranchUnlock
	for rows.Next() {
		var unlock domain.BranchUnlock
		if err := rows.Scan(&unlock.StudentID, &unlock.BranchID, &unlock.UnlockedAt); err != nil {
			log.Error("failed to scan branch unlock row",
				slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		unlocks = append(unlocks, &unlock)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	if unlocks == nil {
		unlocks = []*domain.BranchUnlock{}
	}
	return unlocks, nil
}

// CreateUnlock implements store.BranchStore.CreateUnlock
// The (student, branch) pair is unique; recording the same unlock twice
// returns store.ErrDuplicate.
func (s *PostgresBranchStore) CreateUnlock(ctx context.Context, unlock *domain.BranchUnlock) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := unlock.Validate(); err != nil {
		log.Warn("branch unlock validation failed",
			slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO branch_unlocks (student_id, branch_id, unlocked_at)
		VALUES ($1, $2, $3)
	`
	_, err := s.db.ExecContext(ctx, query, unlock.StudentID, unlock.BranchID, unlock.UnlockedAt)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("branch unlock already recorded",
				slog.String("student_id", unlock.StudentID.String()),
				slog.String("branch_id", unlock.BranchID.String()))
			return fmt.Errorf("%w: branch unlock: %v", store.ErrDuplicate, err)
		}
		log.Error("failed to create branch unlock",
			slog.String("error", err.Error()),
			slog.String("student_id", unlock.StudentID.String()),
			slog.String("branch_id", unlock.BranchID.String()))
		return MapError(err)
	}

	log.Info("branch unlocked",
		slog.String("student_id", unlock.StudentID.String()),
		slog.String("branch_id", unlock.BranchID.String()))
	return nil
}

// ListChoices implements store.BranchStore.ListChoices
// Choices are returned oldest first; the most recent row per branching
// node is the active one.
func (s *PostgresBranchStore) ListChoices(ctx context.Context, studentID uuid.UUID) ([]*domain.BranchChoice, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, student_id, branch_id, from_node_id, chosen_at
		FROM branch_choices
		WHERE student_id = $1
		ORDER BY chosen_at
	`

	rows, err := s.db.QueryContext(ctx, query, studentID)
	if err != nil {
		log.Error("failed to query branch choices",
			slog.String("error", err.Error()),
			slog.String("student_id", studentID.String()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	var choices []*domain.BranchChoice
	for rows.Next() {
		var choice domain.BranchChoice
		if err := rows.Scan(
			&choice.ID,
			&choice.StudentID,
			&choice.BranchID,
			&choice.FromNodeID,
			&choice.ChosenAt,
		); err != nil {
			log.Error("failed to scan branch choice row",
				slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		choices = append(choices, &choice)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	if choices == nil {
		choices = []*domain.BranchChoice{}
	}
	return choices, nil
}

// CreateChoice implements store.BranchStore.CreateChoice
func (s *PostgresBranchStore) CreateChoice(ctx context.Context, choice *domain.BranchChoice) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := choice.Validate(); err != nil {
		log.Warn("branch choice validation failed",
			slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO branch_choices (id, student_id, branch_id, from_node_id, chosen_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		choice.ID,
		choice.StudentID,
		choice.BranchID,
		choice.FromNodeID,
		choice.ChosenAt,
	)

	if err != nil {
		log.Error("failed to create branch choice",
			slog.String("error", err.Error()),
			slog.String("student_id", choice.StudentID.String()),
			slog.String("branch_id", choice.BranchID.String()))
		return MapError(err)
	}

	log.Info("branch chosen",
		slog.String("student_id", choice.StudentID.String()),
		slog.String("branch_id", choice.BranchID.String()))
	return nil
}

// WithTx implements store.BranchStore.WithTx
func (s *PostgresBranchStore) WithTx(tx *sql.Tx) store.BranchStore {
	return &PostgresBranchStore{
		db:     tx,
		logger: s.logger,
	}
}
