// Package srs implements the spaced-repetition scheduling curve for
// mastered knowledge nodes.
//
// Scheduling is demand-pulled: nothing wakes up to send a review. The
// service computes the persisted NextReviewDue field; forecast queries are
// pure projections over it, answered by the review service.
package srs

import (
	"errors"
	"time"

	"github.com/nexuslearn/nexus-api/internal/domain"
)

// Common service errors
var (
	ErrNilRecord   = errors.New("mastery record cannot be nil")
	ErrNilParams   = errors.New("srs params cannot be nil")
	ErrNoSchedule  = errors.New("mastery record has no active review schedule")
	ErrHasSchedule = errors.New("mastery record already has a review schedule")
)

// Service calculates review schedules for mastery records. All methods
// follow the immutable update pattern: they return a new record and never
// modify the input. The current time is always passed in by the caller so
// scheduling stays deterministic under test.
type Service interface {
	// StartSchedule creates the first review schedule for a record that
	// has just reached MASTERED: the interval is the base interval and
	// the node comes due one base interval from now.
	// Returns ErrHasSchedule if a schedule is already active.
	StartSchedule(record *domain.MasteryRecord, now time.Time) (*domain.MasteryRecord, error)

	// ApplyReview advances the schedule after a review attempt. A passed
	// review grows the interval by the growth factor (capped); a failed
	// review resets it to the base interval.
	// Returns ErrNoSchedule if the record has no active schedule.
	ApplyReview(record *domain.MasteryRecord, passed bool, now time.Time) (*domain.MasteryRecord, error)
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters.
func NewDefaultService() (Service, error) {
	return NewService(NewDefaultParams())
}

// NewService creates a new SRS service with the given parameters.
func NewService(params *Params) (Service, error) {
	if params == nil {
		return nil, ErrNilParams
	}
	return &defaultService{params: params}, nil
}

// StartSchedule implements Service.StartSchedule.
func (s *defaultService) StartSchedule(
	record *domain.MasteryRecord,
	now time.Time,
) (*domain.MasteryRecord, error) {
	if record == nil {
		return nil, ErrNilRecord
	}
	if record.NextReviewDue != nil {
		return nil, ErrHasSchedule
	}

	return initialSchedule(record, now, s.params), nil
}

// ApplyReview implements Service.ApplyReview.
func (s *defaultService) ApplyReview(
	record *domain.MasteryRecord,
	passed bool,
	now time.Time,
) (*domain.MasteryRecord, error) {
	if record == nil {
		return nil, ErrNilRecord
	}
	if record.NextReviewDue == nil {
		return nil, ErrNoSchedule
	}

	return applyReview(record, passed, now, s.params), nil
}
