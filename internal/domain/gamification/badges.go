package gamification

import (
	"github.com/nexuslearn/nexus-api/internal/domain"
)

// Snapshot is the read-only view badge and boss predicates evaluate over:
// the student's mastery ledger plus the accumulated XP state.
type Snapshot struct {
	Records []*domain.MasteryRecord
	Nodes   map[string][]*domain.MasteryRecord // mastery records grouped by node domain
	XP      int
	Level   int
	Streak  int
}

// Badge identifiers.
const (
	BadgeFirstSteps    = "first-steps"
	BadgeSharpshooter  = "sharpshooter"
	BadgeDomainMaster  = "domain-master"
	BadgeStreakWeek    = "streak-week"
	BadgeTrulyMastered = "deep-roots"
)

// Boss-challenge eligibility flags.
const (
	BossDomain = "domain-boss"
	BossLevel  = "level-boss"
)

// badgePredicate decides whether a badge is earned given the snapshot.
// Predicates are pure; monotonicity comes from the caller unioning results
// into the append-only earned set.
type badgePredicate func(Snapshot) bool

var badgePredicates = map[string]badgePredicate{
	// Any graded interaction at all.
	BadgeFirstSteps: func(s Snapshot) bool {
		for _, r := range s.Records {
			if len(r.History) > 0 {
				return true
			}
		}
		return false
	},

	// Three or more nodes at MASTERED.
	BadgeSharpshooter: func(s Snapshot) bool {
		return countAtLeast(s.Records, domain.MasteryMastered) >= 3
	},

	// Five nodes in a single domain at MASTERED.
	BadgeDomainMaster: func(s Snapshot) bool {
		return domainMasteredCount(s) >= 5
	},

	// A seven-day activity streak.
	BadgeStreakWeek: func(s Snapshot) bool {
		return s.Streak >= 7
	},

	// Any node with sustained mastery across calendar days.
	BadgeTrulyMastered: func(s Snapshot) bool {
		for _, r := range s.Records {
			if r.TrulyMastered {
				return true
			}
		}
		return false
	},
}

var bossPredicates = map[string]badgePredicate{
	// Five MASTERED nodes in one domain unlocks that domain's boss
	// challenge.
	BossDomain: func(s Snapshot) bool {
		return domainMasteredCount(s) >= 5
	},

	// Level 10 unlocks the level boss.
	BossLevel: func(s Snapshot) bool {
		return s.Level >= 10
	},
}

func countAtLeast(records []*domain.MasteryRecord, level domain.MasteryLevel) int {
	var n int
	for _, r := range records {
		if r.MasteryLevel.AtLeast(level) {
			n++
		}
	}
	return n
}

func domainMasteredCount(s Snapshot) int {
	var best int
	for _, records := range s.Nodes {
		n := countAtLeast(records, domain.MasteryMastered)
		if n > best {
			best = n
		}
	}
	return best
}

// EvaluateBadges returns the badge set earned under the snapshot, merged
// with the already-earned set so awards are never revoked.
func EvaluateBadges(earned []string, snapshot Snapshot) []string {
	return evaluate(earned, snapshot, badgePredicates)
}

// EvaluateBossEligibility returns the boss-challenge flags active under
// the snapshot, merged with the already-earned set.
func EvaluateBossEligibility(earned []string, snapshot Snapshot) []string {
	return evaluate(earned, snapshot, bossPredicates)
}

func evaluate(earned []string, snapshot Snapshot, predicates map[string]badgePredicate) []string {
	have := make(map[string]bool, len(earned))
	result := append([]string(nil), earned...)
	for _, id := range earned {
		have[id] = true
	}

	for id, predicate := range predicates {
		if !have[id] && predicate(snapshot) {
			result = append(result, id)
		}
	}

	return result
}
