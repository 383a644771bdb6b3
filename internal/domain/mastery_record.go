package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for MasteryRecord and Interaction
var (
	ErrEmptyRecordStudentID   = errors.New("mastery record student ID cannot be empty")
	ErrEmptyRecordNodeID      = errors.New("mastery record node ID cannot be empty")
	ErrInvalidCorrectness     = errors.New("interaction correctness must be between 0 and 1")
	ErrNegativeLatency        = errors.New("interaction latency cannot be negative")
	ErrNegativeHintCount      = errors.New("interaction hint count cannot be negative")
	ErrInvalidReviewInterval  = errors.New("review interval must be greater than or equal to 0")
	ErrReviewDueBeforeReviewd = errors.New("next review due cannot precede last reviewed time")
)

// Interaction is a single graded outcome on a knowledge node: how correct
// the answer was, how long it took and how much help was used.
type Interaction struct {
	// Correctness is a partial-credit fraction in [0, 1]. Fully correct
	// answers are 1; the mastery window treats anything at or above the
	// configured threshold as correct.
	Correctness float64   `json:"correctness"`
	LatencyMs   int       `json:"latency_ms"`
	HintCount   int       `json:"hint_count"`
	Timestamp   time.Time `json:"timestamp"`
}

// Validate checks that the Interaction has valid data.
func (i *Interaction) Validate() error {
	if i.Correctness < 0 || i.Correctness > 1 {
		return ErrInvalidCorrectness
	}

	if i.LatencyMs < 0 {
		return ErrNegativeLatency
	}

	if i.HintCount < 0 {
		return ErrNegativeHintCount
	}

	return nil
}

// Hinted reports whether the student used any hints on this interaction.
func (i *Interaction) Hinted() bool {
	return i.HintCount > 0
}

// MasteryRecord is the per (student, node) entry in the mastery ledger.
// It is the single source of truth that nexus scores, review forecasts
// and gamification state are derived from. Records are created on first
// interaction, appended to on every subsequent one and never deleted.
//
// Revision is the optimistic-concurrency token: every committed append
// increments it, and a writer must present the revision it read for the
// append to land.
type MasteryRecord struct {
	StudentID     uuid.UUID     `json:"student_id"`
	NodeID        uuid.UUID     `json:"node_id"`
	History       []Interaction `json:"history"`
	MasteryLevel  MasteryLevel  `json:"mastery_level"`
	TrulyMastered bool          `json:"truly_mastered"`
	// FirstMasteredOn records the UTC calendar day MASTERED was first
	// reached. TrulyMastered is only set once MASTERED holds on a later
	// day, so a single-session streak cannot inflate it.
	FirstMasteredOn *time.Time `json:"first_mastered_on,omitempty"`
	LastReviewedAt  time.Time  `json:"last_reviewed_at"`
	// NextReviewDue is nil until the node first reaches MASTERED and the
	// spaced-repetition schedule starts.
	NextReviewDue      *time.Time `json:"next_review_due,omitempty"`
	ReviewIntervalDays int        `json:"review_interval_days"`
	Revision           int64      `json:"revision"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// NewMasteryRecord creates an empty ledger entry for a student and node.
// The record starts at NOVICE with no history and no review schedule.
func NewMasteryRecord(studentID, nodeID uuid.UUID, now time.Time) (*MasteryRecord, error) {
	record := &MasteryRecord{
		StudentID:    studentID,
		NodeID:       nodeID,
		History:      nil,
		MasteryLevel: MasteryNovice,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return record, nil
}

// Validate checks that the MasteryRecord has valid data, including every
// interaction in its history and the review-schedule invariant.
func (r *MasteryRecord) Validate() error {
	if r.StudentID == uuid.Nil {
		return ErrEmptyRecordStudentID
	}

	if r.NodeID == uuid.Nil {
		return ErrEmptyRecordNodeID
	}

	if !r.MasteryLevel.IsValid() {
		return ErrInvalidMasteryLevel
	}

	if r.ReviewIntervalDays < 0 {
		return ErrInvalidReviewInterval
	}

	if r.NextReviewDue != nil && r.NextReviewDue.Before(r.LastReviewedAt) {
		return ErrReviewDueBeforeReviewd
	}

	for i := range r.History {
		if err := r.History[i].Validate(); err != nil {
			return err
		}
	}

	return nil
}

// LastInteractionAt returns the timestamp of the most recent interaction,
// or the zero time for an empty history.
func (r *MasteryRecord) LastInteractionAt() time.Time {
	if len(r.History) == 0 {
		return time.Time{}
	}
	return r.History[len(r.History)-1].Timestamp
}

// Clone returns a deep copy of the record. The engine follows an immutable
// update pattern: algorithm packages copy, modify and return, never mutate
// their input.
func (r *MasteryRecord) Clone() *MasteryRecord {
	clone := *r
	if r.History != nil {
		clone.History = make([]Interaction, len(r.History))
		copy(clone.History, r.History)
	}
	if r.FirstMasteredOn != nil {
		t := *r.FirstMasteredOn
		clone.FirstMasteredOn = &t
	}
	if r.NextReviewDue != nil {
		t := *r.NextReviewDue
		clone.NextReviewDue = &t
	}
	return &clone
}
