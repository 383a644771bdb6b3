package srs

import (
	"math"
	"time"

	"github.com/nexuslearn/nexus-api/internal/domain"
)

// calculateNextInterval determines the review interval in days after a
// review attempt.
//
// A passed review multiplies the current interval by the growth factor,
// capped at MaxIntervalDays. A failed review resets the interval to
// BaseIntervalDays regardless of how long it had grown, so a forgotten
// node re-enters the short review loop.
func calculateNextInterval(currentInterval int, passed bool, params *Params) int {
	if !passed {
		return params.BaseIntervalDays
	}

	next := int(math.Round(float64(currentInterval) * params.GrowthFactor))
	if next <= currentInterval {
		// Growth must always move the due date forward.
		next = currentInterval + 1
	}
	if next > params.MaxIntervalDays {
		next = params.MaxIntervalDays
	}
	return next
}

// calculateNextDue converts an interval into the next due timestamp.
func calculateNextDue(interval int, now time.Time) time.Time {
	return now.AddDate(0, 0, interval)
}

// initialSchedule creates the first review schedule for a record that has
// just reached MASTERED. The returned record is a copy; the input is not
// mutated.
func initialSchedule(record *domain.MasteryRecord, now time.Time, params *Params) *domain.MasteryRecord {
	next := record.Clone()
	next.ReviewIntervalDays = params.BaseIntervalDays
	next.LastReviewedAt = now
	due := calculateNextDue(params.BaseIntervalDays, now)
	next.NextReviewDue = &due
	next.UpdatedAt = now
	return next
}

// applyReview advances the schedule after a review attempt on a record
// with an active schedule. The returned record is a copy; the input is
// not mutated.
func applyReview(record *domain.MasteryRecord, passed bool, now time.Time, params *Params) *domain.MasteryRecord {
	next := record.Clone()
	next.ReviewIntervalDays = calculateNextInterval(record.ReviewIntervalDays, passed, params)
	next.LastReviewedAt = now
	due := calculateNextDue(next.ReviewIntervalDays, now)
	next.NextReviewDue = &due
	next.UpdatedAt = now
	return next
}
