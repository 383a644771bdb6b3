package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nexuslearn/nexus-api/internal/domain"
	"github.com/nexuslearn/nexus-api/internal/platform/logger"
	"github.com/nexuslearn/nexus-api/internal/store"
)

// PostgresGamificationStore implements the store.GamificationStore
// interface using a PostgreSQL database as the storage backend. Badge and
// boss-eligibility lists are stored as JSONB; the revision column carries
// the optimistic-concurrency guard.
type PostgresGamificationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresGamificationStore creates a new PostgreSQL implementation of
// the GamificationStore interface. If logger is nil, a default logger will
// be used.
func NewPostgresGamificationStore(db store.DBTX, logger *slog.Logger) *PostgresGamificationStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresGamificationStore{
		db:     db,
		logger: logger.With(slog.String("component", "gamification_store")),
	}
}

// Ensure PostgresGamificationStore implements store.GamificationStore interface
var _ store.GamificationStore = (*PostgresGamificationStore)(nil)

// Get implements store.GamificationStore.Get
// Returns store.ErrGamificationStateNotFound if no state exists for the student.
func (s *PostgresGamificationStore) Get(ctx context.Context, studentID uuid.UUID) (*domain.GamificationState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT student_id, xp, streak, last_activity_on, consecutive_correct,
		       badges, boss_eligibility, revision, created_at, updated_at
		FROM gamification_states
		WHERE student_id = $1
	`

	var state domain.GamificationState
	var badgesJSON, bossJSON []byte

	err := s.db.QueryRowContext(ctx, query, studentID).Scan(
		&state.StudentID,
		&state.XP,
		&state.Streak,
		&state.LastActivityOn,
		&state.ConsecutiveCorrect,
		&badgesJSON,
		&bossJSON,
		&state.Revision,
		&state.CreatedAt,
		&state.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("gamification state not found",
				slog.String("student_id", studentID.String()))
			return nil, store.ErrGamificationStateNotFound
		}
		log.Error("failed to get gamification state",
			slog.String("error", err.Error()),
			slog.String("student_id", studentID.String()))
		return nil, MapError(err)
	}

	if len(badgesJSON) > 0 {
		if err := json.Unmarshal(badgesJSON, &state.Badges); err != nil {
			return nil, fmt.Errorf("failed to unmarshal badges: %w", err)
		}
	}
	if len(bossJSON) > 0 {
		if err := json.Unmarshal(bossJSON, &state.BossEligibility); err != nil {
			return nil, fmt.Errorf("failed to unmarshal boss eligibility: %w", err)
		}
	}

	return &state, nil
}

// Save implements store.GamificationStore.Save
// expectedRevision 0 inserts a brand new state row; any other value must
// match the stored revision exactly.
// Returns store.ErrConcurrentModification when the guard fails.
func (s *PostgresGamificationStore) Save(ctx context.Context, state *domain.GamificationState, expectedRevision int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := state.Validate(); err != nil {
		log.Warn("gamification state validation failed during save",
			slog.String("error", err.Error()),
			slog.String("student_id", state.StudentID.String()))
		return err
	}

	badgesJSON, err := json.Marshal(state.Badges)
	if err != nil {
		return fmt.Errorf("failed to marshal badges: %w", err)
	}
	bossJSON, err := json.Marshal(state.BossEligibility)
	if err != nil {
		return fmt.Errorf("failed to marshal boss eligibility: %w", err)
	}

	newRevision := expectedRevision + 1
	updatedAt := time.Now().UTC()

	if expectedRevision == 0 {
		query := `
			INSERT INTO gamification_states (
				student_id, xp, streak, last_activity_on, consecutive_correct,
				badges, boss_eligibility, revision, created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		_, err := s.db.ExecContext(
			ctx,
			query,
			state.StudentID,
			state.XP,
			state.Streak,
			state.LastActivityOn,
			state.ConsecutiveCorrect,
			badgesJSON,
			bossJSON,
			newRevision,
			state.CreatedAt,
			updatedAt,
		)
		if err != nil {
			if IsUniqueViolation(err) {
				log.Debug("concurrent insert of gamification state",
					slog.String("student_id", state.StudentID.String()))
				return fmt.Errorf("%w: %v", store.ErrConcurrentModification, err)
			}
			log.Error("failed to insert gamification state",
				slog.String("error", err.Error()),
				slog.String("student_id", state.StudentID.String()))
			return MapError(err)
		}

		state.Revision = newRevision
		state.UpdatedAt = updatedAt

		log.Info("gamification state created",
			slog.String("student_id", state.StudentID.String()))
		return nil
	}

	query := `
		UPDATE gamification_states
		SET xp = $1, streak = $2, last_activity_on = $3, consecutive_correct = $4,
		    badges = $5, boss_eligibility = $6, revision = $7, updated_at = $8
		WHERE student_id = $9 AND revision = $10
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		state.XP,
		state.Streak,
		state.LastActivityOn,
		state.ConsecutiveCorrect,
		badgesJSON,
		bossJSON,
		newRevision,
		updatedAt,
		state.StudentID,
		expectedRevision,
	)
	if err != nil {
		log.Error("failed to update gamification state",
			slog.String("error", err.Error()),
			slog.String("student_id", state.StudentID.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		log.Debug("revision mismatch on gamification state save",
			slog.String("student_id", state.StudentID.String()),
			slog.Int64("expected_revision", expectedRevision))
		return fmt.Errorf("%w: revision %d is stale", store.ErrConcurrentModification, expectedRevision)
	}

	state.Revision = newRevision
	state.UpdatedAt = updatedAt

	log.Info("gamification state saved",
		slog.String("student_id", state.StudentID.String()),
		slog.Int("xp", state.XP),
		slog.Int("streak", state.Streak))
	return nil
}
