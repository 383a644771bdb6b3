package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for GamificationState
var (
	ErrEmptyStateStudentID = errors.New("gamification state student ID cannot be empty")
	ErrNegativeXP          = errors.New("gamification XP cannot be negative")
	ErrNegativeStreak      = errors.New("gamification streak cannot be negative")
)

// GamificationState accumulates XP, streak and earned awards for a
// student. It is mutated only by consuming ledger events, never by API
// callers, and the level is deliberately absent: it is a pure function of
// XP via the threshold table in the gamification package, so there is no
// persisted level that could drift from the XP total.
type GamificationState struct {
	StudentID uuid.UUID `json:"student_id"`
	XP        int       `json:"xp"`
	Streak    int       `json:"streak"`
	// LastActivityOn is the UTC calendar day of the most recent ledger
	// event, used to decide whether the streak continues or resets.
	LastActivityOn time.Time `json:"last_activity_on"`
	// ConsecutiveCorrect counts correct interactions in a row across all
	// nodes; it feeds the XP streak multiplier.
	ConsecutiveCorrect int `json:"consecutive_correct"`
	// Badges and BossEligibility are append-only: once earned, never
	// revoked.
	Badges          []string  `json:"badges"`
	BossEligibility []string  `json:"boss_eligibility"`
	Revision        int64     `json:"revision"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewGamificationState creates an empty state for a student.
func NewGamificationState(studentID uuid.UUID, now time.Time) (*GamificationState, error) {
	state := &GamificationState{
		StudentID: studentID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := state.Validate(); err != nil {
		return nil, err
	}

	return state, nil
}

// Validate checks that the GamificationState has valid data.
func (s *GamificationState) Validate() error {
	if s.StudentID == uuid.Nil {
		return ErrEmptyStateStudentID
	}

	if s.XP < 0 {
		return ErrNegativeXP
	}

	if s.Streak < 0 {
		return ErrNegativeStreak
	}

	return nil
}

// HasBadge reports whether the badge has already been earned.
func (s *GamificationState) HasBadge(id string) bool {
	for _, b := range s.Badges {
		if b == id {
			return true
		}
	}
	return false
}

// HasBossEligibility reports whether the boss-challenge flag is set.
func (s *GamificationState) HasBossEligibility(id string) bool {
	for _, b := range s.BossEligibility {
		if b == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the state for immutable updates.
func (s *GamificationState) Clone() *GamificationState {
	clone := *s
	if s.Badges != nil {
		clone.Badges = append([]string(nil), s.Badges...)
	}
	if s.BossEligibility != nil {
		clone.BossEligibility = append([]string(nil), s.BossEligibility...)
	}
	return &clone
}
