package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/nexuslearn/nexus-api/internal/domain"
)

// MasteryStore defines the interface for the mastery ledger, the single
// source of truth every derived computation reads from.
type MasteryStore interface {
	// Get retrieves the ledger entry for a student and node.
	// Returns ErrMasteryRecordNotFound if no interaction has ever been
	// recorded for the pair.
	Get(ctx context.Context, studentID, nodeID uuid.UUID) (*domain.MasteryRecord, error)

	// ListByStudent retrieves every ledger entry for a student, ordered
	// by node ID for stable iteration.
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*domain.MasteryRecord, error)

	// CompareAndAppend commits an updated record, guarded by the revision
	// the writer read. expectedRevision 0 means "insert a brand new
	// record"; any other value must match the stored revision exactly.
	// On success the stored revision is expectedRevision+1 and the passed
	// record's Revision field is updated to match.
	//
	// Returns ErrConcurrentModification when another writer got there
	// first; the caller should re-read and retry.
	// Returns validation errors from the domain MasteryRecord if data is
	// invalid.
	CompareAndAppend(ctx context.Context, record *domain.MasteryRecord, expectedRevision int64) error

	// WithTx returns a MasteryStore bound to the provided transaction,
	// for callers that need the append and related writes to commit
	// atomically via store.RunInTransaction.
	WithTx(tx *sql.Tx) MasteryStore
}
