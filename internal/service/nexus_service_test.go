package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexuslearn/nexus-api/internal/domain"
)

// seedHistory builds a ledger entry with n interactions of the given
// correctness, one minute apart ending at last.
func seedHistory(studentID, nodeID uuid.UUID, n int, correctness float64, last time.Time) *domain.MasteryRecord {
	record := &domain.MasteryRecord{
		StudentID:    studentID,
		NodeID:       nodeID,
		MasteryLevel: domain.MasteryNovice,
		CreatedAt:    last.Add(-time.Duration(n) * time.Minute),
		UpdatedAt:    last,
	}
	for i := 0; i < n; i++ {
		record.History = append(record.History, domain.Interaction{
			Correctness: correctness,
			LatencyMs:   4000,
			Timestamp:   last.Add(-time.Duration(n-1-i) * time.Minute),
		})
	}
	record.LastReviewedAt = last
	return record
}

func TestCalculateNexusScoreNeverPracticed(t *testing.T) {
	t.Parallel()

	student := testStudent(4, "math")
	node := testNode("MATH-4-FRAC-01", "math", 4, 2)
	svc := NewNexusService(
		newFakeStudentRegistry(student),
		newFakeKnowledgeStore(node),
		newFakeMasteryStore(),
		nil,
		discardLogger(),
	)

	score, err := svc.CalculateNexusScore(context.Background(), student.ID, node.ID)
	require.NoError(t, err)

	// Only the fit component contributes for an untouched node.
	assert.Equal(t, float64(0), score.Components.Accuracy)
	assert.Equal(t, float64(0), score.Components.Confidence)
	assert.Equal(t, float64(100), score.Components.Fit)
	assert.Equal(t, float64(20), score.Score)
	assert.False(t, score.TrulyMastered)
}

func TestCalculateNexusScorePenalizesPoorFit(t *testing.T) {
	t.Parallel()

	student := testStudent(4, "math")
	onTrack := testNode("MATH-4-FRAC-01", "math", 4, 2)
	offTrack := testNode("SCI-7-CELL-01", "science", 7, 2)
	svc := NewNexusService(
		newFakeStudentRegistry(student),
		newFakeKnowledgeStore(onTrack, offTrack),
		newFakeMasteryStore(),
		nil,
		discardLogger(),
	)

	onScore, err := svc.CalculateNexusScore(context.Background(), student.ID, onTrack.ID)
	require.NoError(t, err)
	offScore, err := svc.CalculateNexusScore(context.Background(), student.ID, offTrack.ID)
	require.NoError(t, err)

	assert.Greater(t, onScore.Score, offScore.Score)
	assert.Less(t, offScore.Components.Fit, float64(100))
}

func TestCalculateNexusScoreUnknownIDs(t *testing.T) {
	t.Parallel()

	student := testStudent(4, "math")
	node := testNode("MATH-4-FRAC-01", "math", 4, 2)
	svc := NewNexusService(
		newFakeStudentRegistry(student),
		newFakeKnowledgeStore(node),
		newFakeMasteryStore(),
		nil,
		discardLogger(),
	)

	_, err := svc.CalculateNexusScore(context.Background(), uuid.New(), node.ID)
	assert.ErrorIs(t, err, ErrStudentNotFound)

	_, err = svc.CalculateNexusScore(context.Background(), student.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestGetAllNexusScoresOrdering(t *testing.T) {
	t.Parallel()

	student := testStudent(4, "math")
	strong := testNode("MATH-4-FRAC-01", "math", 4, 2)
	weak := testNode("MATH-4-DECI-01", "math", 4, 2)
	ledger := newFakeMasteryStore()

	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	ledger.put(seedHistory(student.ID, strong.ID, 5, 1.0, base))
	ledger.put(seedHistory(student.ID, weak.ID, 5, 0.0, base))

	svc := NewNexusService(
		newFakeStudentRegistry(student),
		newFakeKnowledgeStore(strong, weak),
		ledger,
		nil,
		discardLogger(),
	)

	scores, err := svc.GetAllNexusScores(context.Background(), student.ID)
	require.NoError(t, err)
	require.Len(t, scores, 2)

	assert.Equal(t, strong.ID, scores[0].NodeID)
	assert.Equal(t, weak.ID, scores[1].NodeID)
	assert.Greater(t, scores[0].Score, scores[1].Score)
}

func TestGetAllNexusScoresTieBreaksOnRecency(t *testing.T) {
	t.Parallel()

	student := testStudent(4, "math")
	older := testNode("MATH-4-AAAA-01", "math", 4, 2)
	newer := testNode("MATH-4-ZZZZ-01", "math", 4, 2)
	ledger := newFakeMasteryStore()

	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	ledger.put(seedHistory(student.ID, older.ID, 5, 1.0, base))
	ledger.put(seedHistory(student.ID, newer.ID, 5, 1.0, base.Add(time.Hour)))

	svc := NewNexusService(
		newFakeStudentRegistry(student),
		newFakeKnowledgeStore(older, newer),
		ledger,
		nil,
		discardLogger(),
	)

	scores, err := svc.GetAllNexusScores(context.Background(), student.ID)
	require.NoError(t, err)
	require.Len(t, scores, 2)

	require.Equal(t, scores[0].Score, scores[1].Score, "identical histories score identically")
	assert.Equal(t, newer.ID, scores[0].NodeID, "equal scores order by most recent practice")
}

func TestGetAllNexusScoresSkipsRetiredNodes(t *testing.T) {
	t.Parallel()

	student := testStudent(4, "math")
	node := testNode("MATH-4-FRAC-01", "math", 4, 2)
	ledger := newFakeMasteryStore()

	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	ledger.put(seedHistory(student.ID, node.ID, 3, 1.0, base))
	ledger.put(seedHistory(student.ID, uuid.New(), 3, 1.0, base)) // node no longer exists

	svc := NewNexusService(
		newFakeStudentRegistry(student),
		newFakeKnowledgeStore(node),
		ledger,
		nil,
		discardLogger(),
	)

	scores, err := svc.GetAllNexusScores(context.Background(), student.ID)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, node.ID, scores[0].NodeID)
}

func TestGetAllNexusScoresUnknownStudent(t *testing.T) {
	t.Parallel()

	svc := NewNexusService(
		newFakeStudentRegistry(),
		newFakeKnowledgeStore(),
		newFakeMasteryStore(),
		nil,
		discardLogger(),
	)

	_, err := svc.GetAllNexusScores(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrStudentNotFound)
}
