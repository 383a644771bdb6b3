package gamification

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexuslearn/nexus-api/internal/domain"
)

func masteredRecord(t *testing.T, level domain.MasteryLevel, trulyMastered bool) *domain.MasteryRecord {
	t.Helper()
	record, err := domain.NewMasteryRecord(uuid.New(), uuid.New(), time.Now().UTC())
	require.NoError(t, err)
	record.MasteryLevel = level
	record.TrulyMastered = trulyMastered
	record.History = []domain.Interaction{{Correctness: 1, Timestamp: time.Now().UTC()}}
	return record
}

func TestEvaluateBadges(t *testing.T) {
	t.Parallel()

	mastered := make([]*domain.MasteryRecord, 5)
	for i := range mastered {
		mastered[i] = masteredRecord(t, domain.MasteryMastered, false)
	}

	snapshot := Snapshot{
		Records: mastered,
		Nodes:   map[string][]*domain.MasteryRecord{"math": mastered},
		Streak:  7,
	}

	badges := EvaluateBadges(nil, snapshot)

	assert.Contains(t, badges, BadgeFirstSteps)
	assert.Contains(t, badges, BadgeSharpshooter)
	assert.Contains(t, badges, BadgeDomainMaster)
	assert.Contains(t, badges, BadgeStreakWeek)
	assert.NotContains(t, badges, BadgeTrulyMastered)
}

func TestEvaluateBadgesEmptySnapshot(t *testing.T) {
	t.Parallel()

	badges := EvaluateBadges(nil, Snapshot{})
	assert.Empty(t, badges)
}

func TestEvaluateBadgesMonotonic(t *testing.T) {
	t.Parallel()

	// A badge earned earlier survives even if the snapshot no longer
	// satisfies its predicate.
	badges := EvaluateBadges([]string{BadgeStreakWeek}, Snapshot{Streak: 0})
	assert.Contains(t, badges, BadgeStreakWeek)
}

func TestEvaluateBadgesNoDuplicates(t *testing.T) {
	t.Parallel()

	record := masteredRecord(t, domain.MasteryNovice, false)
	snapshot := Snapshot{Records: []*domain.MasteryRecord{record}}

	badges := EvaluateBadges([]string{BadgeFirstSteps}, snapshot)
	assert.Equal(t, []string{BadgeFirstSteps}, badges)
}

func TestEvaluateBossEligibility(t *testing.T) {
	t.Parallel()

	mastered := make([]*domain.MasteryRecord, 5)
	for i := range mastered {
		mastered[i] = masteredRecord(t, domain.MasteryMastered, false)
	}

	flags := EvaluateBossEligibility(nil, Snapshot{
		Nodes: map[string][]*domain.MasteryRecord{"science": mastered},
		Level: 10,
	})

	assert.ElementsMatch(t, []string{BossDomain, BossLevel}, flags)

	// Level 9 with scattered mastery earns neither.
	scattered := map[string][]*domain.MasteryRecord{
		"math":    mastered[:2],
		"science": mastered[2:4],
	}
	none := EvaluateBossEligibility(nil, Snapshot{Nodes: scattered, Level: 9})
	assert.Empty(t, none)
}

func TestTrulyMasteredBadge(t *testing.T) {
	t.Parallel()

	record := masteredRecord(t, domain.MasteryMastered, true)
	badges := EvaluateBadges(nil, Snapshot{Records: []*domain.MasteryRecord{record}})
	assert.Contains(t, badges, BadgeTrulyMastered)
}
