// Package gamification derives XP, level, streak, badges and
// boss-challenge eligibility from mastery ledger events.
//
// The state machine only ever consumes ledger events; it never feeds back
// into mastery, scoring or scheduling. Level is a pure function of XP via
// the threshold table, so there is no persisted level to drift out of
// sync with the XP total.
package gamification

import (
	"math"
	"time"

	"github.com/nexuslearn/nexus-api/internal/domain"
)

// utcDay truncates a timestamp to its UTC calendar day.
func utcDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// LevelForXP derives the level from cumulative XP through the threshold
// table. Crossing one threshold raises the level by exactly 1; a burst of
// XP that jumps several thresholds lands on the level whose threshold it
// actually clears, never beyond the table.
func LevelForXP(xp int, params *Params) int {
	level := 1
	for i, threshold := range params.LevelThresholds {
		if xp >= threshold {
			level = i + 1
		} else {
			break
		}
	}
	return level
}

// XPForInteraction computes the award for one graded interaction. An
// incorrect answer earns nothing; a correct one earns base XP scaled by
// node difficulty and the accuracy-streak multiplier, which grows by
// StreakStep per consecutive correct answer and is capped.
func XPForInteraction(correct bool, difficulty, consecutiveCorrect int, params *Params) int {
	if !correct {
		return 0
	}
	if difficulty < domain.MinDifficulty {
		difficulty = domain.MinDifficulty
	}

	multiplier := 1.0
	if consecutiveCorrect > 1 {
		multiplier += params.StreakStep * float64(consecutiveCorrect-1)
	}
	if multiplier > params.MaxMultiplier {
		multiplier = params.MaxMultiplier
	}

	return int(math.Round(float64(params.BaseXP) * float64(difficulty) * multiplier))
}

// NextStreak computes the day-streak counter after activity at the given
// time. The streak increments on the first activity of a day, continues
// unchanged through same-day activity, and restarts at 1 after a full
// calendar day without activity.
func NextStreak(current int, lastActivityOn, now time.Time) int {
	today := utcDay(now)

	if lastActivityOn.IsZero() {
		return 1
	}

	lastDay := utcDay(lastActivityOn)
	switch {
	case today.Equal(lastDay):
		return current
	case today.Equal(lastDay.AddDate(0, 0, 1)):
		return current + 1
	default:
		return 1
	}
}

// EffectiveStreak is the streak a read should report: once a full calendar
// day has passed without activity the stored counter is stale and reads as
// zero, even though no event has landed to reset it.
func EffectiveStreak(stored int, lastActivityOn, now time.Time) int {
	if lastActivityOn.IsZero() {
		return 0
	}
	gap := utcDay(now).Sub(utcDay(lastActivityOn))
	if gap > 24*time.Hour {
		return 0
	}
	return stored
}

// Activity is one ledger event as seen by the gamification state machine.
type Activity struct {
	Correct    bool
	Difficulty int
	OccurredAt time.Time
}

// Apply folds one activity into the state, returning a new state. XP and
// level never decrease; the streak counter follows NextStreak; the
// consecutive-correct counter resets on any incorrect answer.
func Apply(state *domain.GamificationState, activity Activity, params *Params) *domain.GamificationState {
	next := state.Clone()

	if activity.Correct {
		next.ConsecutiveCorrect = state.ConsecutiveCorrect + 1
	} else {
		next.ConsecutiveCorrect = 0
	}

	next.XP += XPForInteraction(activity.Correct, activity.Difficulty, next.ConsecutiveCorrect, params)
	next.Streak = NextStreak(state.Streak, state.LastActivityOn, activity.OccurredAt)
	next.LastActivityOn = utcDay(activity.OccurredAt)
	next.UpdatedAt = activity.OccurredAt

	return next
}
