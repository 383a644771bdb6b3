package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/nexuslearn/nexus-api/internal/domain"
)

// GamificationStore defines the interface for per-student gamification
// state. The state is only ever written by the ledger-event consumer;
// API callers read it.
type GamificationStore interface {
	// Get retrieves a student's gamification state.
	// Returns ErrGamificationStateNotFound if no ledger event has ever
	// been consumed for the student.
	Get(ctx context.Context, studentID uuid.UUID) (*domain.GamificationState, error)

	// Save commits the state, guarded by the revision the writer read.
	// expectedRevision 0 inserts a brand new state row. Returns
	// ErrConcurrentModification when the guard fails.
	Save(ctx context.Context, state *domain.GamificationState, expectedRevision int64) error
}
