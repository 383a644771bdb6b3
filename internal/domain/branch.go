package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for branch tracking entities
var (
	ErrEmptyChoiceStudentID = errors.New("branch choice student ID cannot be empty")
	ErrEmptyChoiceBranchID  = errors.New("branch choice branch ID cannot be empty")
	ErrEmptyUnlockStudentID = errors.New("branch unlock student ID cannot be empty")
	ErrEmptyUnlockBranchID  = errors.New("branch unlock branch ID cannot be empty")
)

// BranchState is the per (student, branch) position in the unlock state
// machine. The set of states is closed; the progression package owns the
// transition table.
type BranchState string

// Possible branch states.
const (
	BranchLocked    BranchState = "locked"
	BranchAvailable BranchState = "available"
	BranchChosen    BranchState = "chosen"
)

// BranchChoice records that a student selected an outgoing edge at a
// decision node. Choices are append-only; the most recent row per
// (student, branching node) is the active one.
type BranchChoice struct {
	ID         uuid.UUID `json:"id"`
	StudentID  uuid.UUID `json:"student_id"`
	BranchID   uuid.UUID `json:"branch_id"`
	FromNodeID uuid.UUID `json:"from_node_id"`
	ChosenAt   time.Time `json:"chosen_at"`
}

// NewBranchChoice creates a choice record for a student and branch edge.
func NewBranchChoice(studentID uuid.UUID, edge *BranchEdge, now time.Time) (*BranchChoice, error) {
	choice := &BranchChoice{
		ID:         uuid.New(),
		StudentID:  studentID,
		BranchID:   edge.ID,
		FromNodeID: edge.FromNodeID,
		ChosenAt:   now,
	}

	if err := choice.Validate(); err != nil {
		return nil, err
	}

	return choice, nil
}

// Validate checks that the BranchChoice has valid data.
func (c *BranchChoice) Validate() error {
	if c.StudentID == uuid.Nil {
		return ErrEmptyChoiceStudentID
	}

	if c.BranchID == uuid.Nil {
		return ErrEmptyChoiceBranchID
	}

	return nil
}

// BranchUnlock persists a LOCKED to AVAILABLE transition for a student and
// branch. Recording the transition is what makes unlock re-evaluation
// idempotent: a branch already present here is never reported as newly
// available again.
type BranchUnlock struct {
	StudentID  uuid.UUID `json:"student_id"`
	BranchID   uuid.UUID `json:"branch_id"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

// NewBranchUnlock creates an unlock record for a student and branch.
func NewBranchUnlock(studentID, branchID uuid.UUID, now time.Time) (*BranchUnlock, error) {
	unlock := &BranchUnlock{
		StudentID:  studentID,
		BranchID:   branchID,
		UnlockedAt: now,
	}

	if err := unlock.Validate(); err != nil {
		return nil, err
	}

	return unlock, nil
}

// Validate checks that the BranchUnlock has valid data.
func (u *BranchUnlock) Validate() error {
	if u.StudentID == uuid.Nil {
		return ErrEmptyUnlockStudentID
	}

	if u.BranchID == uuid.Nil {
		return ErrEmptyUnlockBranchID
	}

	return nil
}
