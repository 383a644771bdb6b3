// Package mastery implements the fixed-window evaluation that derives a
// student's mastery level from the tail of their interaction history.
//
// The evaluation is a pure function over a ledger snapshot: the last K
// interactions on a node are counted, the level advances one stage when
// enough of the window is correct without leaning on hints, and regresses
// one stage when enough of the window is incorrect. No other path changes
// the level.
package mastery

import (
	"math"
	"time"

	"github.com/nexuslearn/nexus-api/internal/domain"
)

// windowCounts tallies the evaluation window. The counts compare against
// thresholds computed from the configured window size, not the number of
// interactions actually present, so a short history cannot advance off a
// single lucky answer.
type windowCounts struct {
	correct   int
	incorrect int
	hinted    int
}

// countWindow tallies the last min(len(history), K) interactions.
func countWindow(history []domain.Interaction, params *Params) windowCounts {
	start := len(history) - params.WindowSize
	if start < 0 {
		start = 0
	}

	var counts windowCounts
	for _, interaction := range history[start:] {
		if interaction.Correctness >= params.CorrectThreshold {
			counts.correct++
		} else {
			counts.incorrect++
		}
		if interaction.Hinted() {
			counts.hinted++
		}
	}
	return counts
}

// evaluateLevel applies the window rules to the current level and returns
// the next one. Advance and regress both move exactly one stage through
// the domain transition tables; when neither condition holds the level is
// unchanged.
func evaluateLevel(
	current domain.MasteryLevel,
	history []domain.Interaction,
	params *Params,
) (domain.MasteryLevel, error) {
	counts := countWindow(history, params)

	advanceNeeded := int(math.Ceil(params.AdvanceRatio * float64(params.WindowSize)))
	regressNeeded := int(math.Ceil(params.RegressRatio * float64(params.WindowSize)))

	switch {
	case counts.correct >= advanceNeeded && counts.hinted <= params.MaxHintedForAdvance:
		return current.Advance()
	case counts.incorrect >= regressNeeded:
		return current.Regress()
	default:
		return current, nil
	}
}

// Evaluation is the result of appending one interaction to a record.
type Evaluation struct {
	// Level is the mastery level after the append.
	Level domain.MasteryLevel

	// TrulyMastered is set once MASTERED has held on two distinct UTC
	// calendar days.
	TrulyMastered bool

	// FirstMasteredOn carries the day MASTERED was first reached, or nil
	// if it never has been.
	FirstMasteredOn *time.Time

	// Regressed reports whether this evaluation moved the level down,
	// which the review scheduler treats as a failed review.
	Regressed bool
}

// utcDay truncates a timestamp to its UTC calendar day.
func utcDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Evaluate runs the window evaluation for a record whose history already
// includes the newly appended interaction. The record itself is not
// mutated; the caller applies the returned Evaluation.
func Evaluate(record *domain.MasteryRecord, now time.Time, params *Params) (Evaluation, error) {
	next, err := evaluateLevel(record.MasteryLevel, record.History, params)
	if err != nil {
		return Evaluation{}, err
	}

	result := Evaluation{
		Level:           next,
		TrulyMastered:   record.TrulyMastered,
		FirstMasteredOn: record.FirstMasteredOn,
		Regressed:       !next.AtLeast(record.MasteryLevel),
	}

	if next == domain.MasteryMastered {
		today := utcDay(now)
		switch {
		case result.FirstMasteredOn == nil:
			result.FirstMasteredOn = &today
		case today.After(*result.FirstMasteredOn):
			// MASTERED sustained across two separate calendar-day
			// sessions, not just one streak.
			result.TrulyMastered = true
		}
	}

	return result, nil
}
