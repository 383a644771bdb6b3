package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/nexuslearn/nexus-api/internal/domain"
)

// BranchStore defines the interface for per-student branch progression
// tracking: which branches have unlocked and which have been chosen.
type BranchStore interface {
	// ListUnlocks retrieves every persisted LOCKED->AVAILABLE transition
	// for a student.
	ListUnlocks(ctx context.Context, studentID uuid.UUID) ([]*domain.BranchUnlock, error)

	// CreateUnlock persists an unlock transition. The (student, branch)
	// pair is unique: recording the same unlock twice returns
	// ErrDuplicate, which is what keeps unlock re-evaluation idempotent.
	CreateUnlock(ctx context.Context, unlock *domain.BranchUnlock) error

	// ListChoices retrieves a student's branch choices, oldest first.
	// The most recent choice per branching node is the active one.
	ListChoices(ctx context.Context, studentID uuid.UUID) ([]*domain.BranchChoice, error)

	// CreateChoice appends a branch choice. Choices are append-only;
	// re-choosing writes a new row rather than updating an old one.
	CreateChoice(ctx context.Context, choice *domain.BranchChoice) error

	// WithTx returns a BranchStore bound to the provided transaction.
	WithTx(tx *sql.Tx) BranchStore
}
