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

// PostgresMasteryStore implements the store.MasteryStore interface using a
// PostgreSQL database as the storage backend. The interaction history is
// stored as a JSONB column; the revision column carries the
// optimistic-concurrency guard.
type PostgresMasteryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresMasteryStore creates a new PostgreSQL implementation of the
// MasteryStore interface. If logger is nil, a default logger will be used.
func NewPostgresMasteryStore(db store.DBTX, logger *slog.Logger) *PostgresMasteryStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresMasteryStore{
		db:     db,
		logger: logger.With(slog.String("component", "mastery_store")),
	}
}

// Ensure PostgresMasteryStore implements store.MasteryStore interface
var _ store.MasteryStore = (*PostgresMasteryStore)(nil)

// Get implements store.MasteryStore.Get
// Returns store.ErrMasteryRecordNotFound if no record exists for the pair.
func (s *PostgresMasteryStore) Get(ctx context.Context, studentID, nodeID uuid.UUID) (*domain.MasteryRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT student_id, node_id, history, mastery_level, truly_mastered,
		       first_mastered_on, last_reviewed_at, next_review_due,
		       review_interval_days, revision, created_at, updated_at
		FROM mastery_records
		WHERE student_id = $1 AND node_id = $2
	`

	record, err := scanMasteryRecord(s.db.QueryRowContext(ctx, query, studentID, nodeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("mastery record not found",
				slog.String("student_id", studentID.String()),
				slog.String("node_id", nodeID.String()))
			return nil, store.ErrMasteryRecordNotFound
		}
		log.Error("failed to get mastery record",
			slog.String("error", err.Error()),
			slog.String("student_id", studentID.String()),
			slog.String("node_id", nodeID.String()))
		return nil, MapError(err)
	}

	return record, nil
}

// ListByStudent implements store.MasteryStore.ListByStudent
func (s *PostgresMasteryStore) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*domain.MasteryRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT student_id, node_id, history, mastery_level, truly_mastered,
		       first_mastered_on, last_reviewed_at, next_review_due,
		       review_interval_days, revision, created_at, updated_at
		FROM mastery_records
		WHERE student_id = $1
		ORDER BY node_id
	`

	rows, err := s.db.QueryContext(ctx, query, studentID)
	if err != nil {
		log.Error("failed to query mastery records",
			slog.String("error", err.Error()),
			slog.String("student_id", studentID.String()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	var records []*domain.MasteryRecord
	for rows.Next() {
		record, err := scanMasteryRecord(rows)
		if err != nil {
			log.Error("failed to scan mastery record row",
				slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	if records == nil {
		records = []*domain.MasteryRecord{}
	}

	log.Debug("listed mastery records",
		slog.String("student_id", studentID.String()),
		slog.Int("count", len(records)))
	return records, nil
}

// CompareAndAppend implements store.MasteryStore.CompareAndAppend
// expectedRevision 0 inserts a brand new record; any other value must match
// the stored revision exactly. On success the record's Revision field is
// set to expectedRevision+1.
// Returns store.ErrConcurrentModification when another writer got there first.
func (s *PostgresMasteryStore) CompareAndAppend(ctx context.Context, record *domain.MasteryRecord, expectedRevision int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := record.Validate(); err != nil {
		log.Warn("mastery record validation failed during append",
			slog.String("error", err.Error()),
			slog.String("student_id", record.StudentID.String()),
			slog.String("node_id", record.NodeID.String()))
		return err
	}

	historyJSON, err := json.Marshal(record.History)
	if err != nil {
		return fmt.Errorf("failed to marshal interaction history: %w", err)
	}

	newRevision := expectedRevision + 1
	updatedAt := time.Now().UTC()

	if expectedRevision == 0 {
		return s.insert(ctx, record, historyJSON, newRevision, updatedAt)
	}
	return s.update(ctx, record, historyJSON, expectedRevision, newRevision, updatedAt)
}

func (s *PostgresMasteryStore) insert(
	ctx context.Context,
	record *domain.MasteryRecord,
	historyJSON []byte,
	newRevision int64,
	updatedAt time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO mastery_records (
			student_id, node_id, history, mastery_level, truly_mastered,
			first_mastered_on, last_reviewed_at, next_review_due,
			review_interval_days, revision, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		record.StudentID,
		record.NodeID,
		historyJSON,
		record.MasteryLevel,
		record.TrulyMastered,
		record.FirstMasteredOn,
		record.LastReviewedAt,
		record.NextReviewDue,
		record.ReviewIntervalDays,
		newRevision,
		record.CreatedAt,
		updatedAt,
	)

	if err != nil {
		// A unique violation here means a competing writer inserted the
		// first record for this pair while we held revision 0.
		if IsUniqueViolation(err) {
			log.Debug("concurrent insert of mastery record",
				slog.String("student_id", record.StudentID.String()),
				slog.String("node_id", record.NodeID.String()))
			return fmt.Errorf("%w: %v", store.ErrConcurrentModification, err)
		}
		log.Error("failed to insert mastery record",
			slog.String("error", err.Error()),
			slog.String("student_id", record.StudentID.String()),
			slog.String("node_id", record.NodeID.String()))
		return MapError(err)
	}

	record.Revision = newRevision
	record.UpdatedAt = updatedAt

	log.Info("mastery record created",
		slog.String("student_id", record.StudentID.String()),
		slog.String("node_id", record.NodeID.String()),
		slog.String("mastery_level", string(record.MasteryLevel)))
	return nil
}

func (s *PostgresMasteryStore) update(
	ctx context.Context,
	record *domain.MasteryRecord,
	historyJSON []byte,
	expectedRevision, newRevision int64,
	updatedAt time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE mastery_records
		SET history = $1, mastery_level = $2, truly_mastered = $3,
		    first_mastered_on = $4, last_reviewed_at = $5, next_review_due = $6,
		    review_interval_days = $7, revision = $8, updated_at = $9
		WHERE student_id = $10 AND node_id = $11 AND revision = $12
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		historyJSON,
		record.MasteryLevel,
		record.TrulyMastered,
		record.FirstMasteredOn,
		record.LastReviewedAt,
		record.NextReviewDue,
		record.ReviewIntervalDays,
		newRevision,
		updatedAt,
		record.StudentID,
		record.NodeID,
		expectedRevision,
	)

	if err != nil {
		log.Error("failed to update mastery record",
			slog.String("error", err.Error()),
			slog.String("student_id", record.StudentID.String()),
			slog.String("node_id", record.NodeID.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		log.Debug("revision mismatch on mastery record append",
			slog.String("student_id", record.StudentID.String()),
			slog.String("node_id", record.NodeID.String()),
			slog.Int64("expected_revision", expectedRevision))
		return fmt.Errorf("%w: revision %d is stale", store.ErrConcurrentModification, expectedRevision)
	}

	record.Revision = newRevision
	record.UpdatedAt = updatedAt

	log.Info("mastery record appended",
		slog.String("student_id", record.StudentID.String()),
		slog.String("node_id", record.NodeID.String()),
		slog.String("mastery_level", string(record.MasteryLevel)),
		slog.Int64("revision", newRevision))
	return nil
}

// WithTx implements store.MasteryStore.WithTx
func (s *PostgresMasteryStore) WithTx(tx *sql.Tx) store.MasteryStore {
	return &PostgresMasteryStore{
		db:     tx,
		logger: s.logger,
	}
}

func scanMasteryRecord(row rowScanner) (*domain.MasteryRecord, error) {
	var record domain.MasteryRecord
	var historyJSON []byte
	var level string

	err := row.Scan(
		&record.StudentID,
		&record.NodeID,
		&historyJSON,
		&level,
		&record.TrulyMastered,
		&record.FirstMasteredOn,
		&record.LastReviewedAt,
		&record.NextReviewDue,
		&record.ReviewIntervalDays,
		&record.Revision,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.MasteryLevel = domain.MasteryLevel(level)

	if len(historyJSON) > 0 {
		if err := json.Unmarshal(historyJSON, &record.History); err != nil {
			return nil, fmt.Errorf("failed to unmarshal interaction history: %w", err)
		}
	}

	return &record, nil
}
