package gemini

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"text/template"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexuslearn/nexus-api/internal/config"
	"github.com/nexuslearn/nexus-api/internal/lessonplan"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestPlanner builds a planner without a live client, enough for the
// prompt and parse paths.
func newTestPlanner(t *testing.T) *GeminiPlanner {
	t.Helper()
	tmpl, err := template.New("lessonplan").Parse(promptTemplateText)
	require.NoError(t, err)
	return &GeminiPlanner{
		logger:         testLogger(),
		promptTemplate: tmpl,
		model:          "test-model",
	}
}

func TestNewGeminiPlannerConfigValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  config.LLMConfig
	}{
		{name: "missing api key", cfg: config.LLMConfig{ModelName: "gemini-2.0-flash"}},
		{name: "missing model name", cfg: config.LLMConfig{GeminiAPIKey: "key"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewGeminiPlanner(context.Background(), testLogger(), tc.cfg)
			assert.ErrorIs(t, err, lessonplan.ErrInvalidConfig)
		})
	}
}

func TestCreatePrompt(t *testing.T) {
	t.Parallel()
	g := newTestPlanner(t)

	snapshot := lessonplan.Snapshot{
		GradeLevel:  4,
		DomainFocus: "math",
		Weaknesses: []lessonplan.FocusNode{
			{Code: "MATH-4-FRAC-01", Title: "Intro to fractions", Domain: "math", MasteryLevel: "DEVELOPING"},
		},
		DueReviews: []lessonplan.FocusNode{
			{Code: "MATH-4-ADD-03", Title: "Multi-digit addition", Domain: "math"},
		},
	}

	prompt, err := g.createPrompt(context.Background(), snapshot)
	require.NoError(t, err)

	assert.Contains(t, prompt, "grade 4")
	assert.Contains(t, prompt, "focusing on math")
	assert.Contains(t, prompt, "MATH-4-FRAC-01")
	assert.Contains(t, prompt, "MATH-4-ADD-03")
}

func TestCreatePromptEmptySnapshot(t *testing.T) {
	t.Parallel()
	g := newTestPlanner(t)

	_, err := g.createPrompt(context.Background(), lessonplan.Snapshot{GradeLevel: 4})
	assert.ErrorIs(t, err, lessonplan.ErrEmptySnapshot)
}

func TestParseResponse(t *testing.T) {
	t.Parallel()
	g := newTestPlanner(t)
	studentID := uuid.New()

	t.Run("valid response", func(t *testing.T) {
		t.Parallel()
		plan, err := g.parseResponse(context.Background(), &ResponseSchema{
			Title:   "Fractions catch-up",
			Summary: "Review addition, then rebuild fraction intuition.",
			Items: []ItemSchema{
				{NodeCode: "MATH-4-ADD-03", Activity: "Five review problems", Reason: "due for review"},
				{NodeCode: "MATH-4-FRAC-01", Activity: "Pizza slice exercise"},
			},
		}, studentID)
		require.NoError(t, err)

		assert.Equal(t, studentID, plan.StudentID)
		assert.Equal(t, "Fractions catch-up", plan.Title)
		require.Len(t, plan.Items, 2)
		assert.Equal(t, "MATH-4-ADD-03", plan.Items[0].NodeCode)
		assert.False(t, plan.GeneratedAt.IsZero())
	})

	t.Run("nil response", func(t *testing.T) {
		t.Parallel()
		_, err := g.parseResponse(context.Background(), nil, studentID)
		assert.ErrorIs(t, err, lessonplan.ErrInvalidResponse)
	})

	t.Run("no items", func(t *testing.T) {
		t.Parallel()
		_, err := g.parseResponse(context.Background(), &ResponseSchema{Title: "Empty"}, studentID)
		assert.ErrorIs(t, err, lessonplan.ErrInvalidResponse)
	})

	t.Run("item missing activity", func(t *testing.T) {
		t.Parallel()
		_, err := g.parseResponse(context.Background(), &ResponseSchema{
			Items: []ItemSchema{{NodeCode: "MATH-4-FRAC-01"}},
		}, studentID)
		assert.ErrorIs(t, err, lessonplan.ErrInvalidResponse)
	})
}
