package domain

import "errors"

// MasteryLevel is the discrete proficiency stage a student holds on a
// knowledge node. The set of levels is closed; transitions only move one
// stage at a time through the tables below.
type MasteryLevel string

// Possible mastery level values, ordered from lowest to highest.
const (
	MasteryNovice     MasteryLevel = "novice"
	MasteryDeveloping MasteryLevel = "developing"
	MasteryProficient MasteryLevel = "proficient"
	MasteryMastered   MasteryLevel = "mastered"
)

// ErrInvalidMasteryLevel indicates a mastery level outside the closed set.
var ErrInvalidMasteryLevel = errors.New("invalid mastery level")

// advanceTransitions maps each level to the next stage up. MASTERED is
// terminal upward.
var advanceTransitions = map[MasteryLevel]MasteryLevel{
	MasteryNovice:     MasteryDeveloping,
	MasteryDeveloping: MasteryProficient,
	MasteryProficient: MasteryMastered,
	MasteryMastered:   MasteryMastered,
}

// regressTransitions maps each level to the next stage down. NOVICE is
// terminal downward.
var regressTransitions = map[MasteryLevel]MasteryLevel{
	MasteryNovice:     MasteryNovice,
	MasteryDeveloping: MasteryNovice,
	MasteryProficient: MasteryDeveloping,
	MasteryMastered:   MasteryProficient,
}

// levelRank gives the ordering used for threshold comparisons.
var levelRank = map[MasteryLevel]int{
	MasteryNovice:     0,
	MasteryDeveloping: 1,
	MasteryProficient: 2,
	MasteryMastered:   3,
}

// IsValid reports whether the level is one of the closed set of values.
func (l MasteryLevel) IsValid() bool {
	_, ok := levelRank[l]
	return ok
}

// Advance returns the next stage up, or an error for an unknown level.
func (l MasteryLevel) Advance() (MasteryLevel, error) {
	next, ok := advanceTransitions[l]
	if !ok {
		return "", ErrInvalidMasteryLevel
	}
	return next, nil
}

// Regress returns the next stage down, or an error for an unknown level.
func (l MasteryLevel) Regress() (MasteryLevel, error) {
	prev, ok := regressTransitions[l]
	if !ok {
		return "", ErrInvalidMasteryLevel
	}
	return prev, nil
}

// AtLeast reports whether the level meets or exceeds the given threshold.
// Unknown levels never satisfy a threshold.
func (l MasteryLevel) AtLeast(threshold MasteryLevel) bool {
	lr, ok := levelRank[l]
	if !ok {
		return false
	}
	tr, ok := levelRank[threshold]
	if !ok {
		return false
	}
	return lr >= tr
}
