package lessonplan

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// FocusNode is one knowledge node as it appears in a student snapshot:
// enough context for the language model to reason about it, nothing more.
type FocusNode struct {
	Code         string `json:"code"`
	Title        string `json:"title"`
	Domain       string `json:"domain"`
	MasteryLevel string `json:"mastery_level"`
}

// Snapshot is the engine-derived view of a student that seeds a lesson
// plan: where they are strong, where they struggle, and what is due for
// review. The caller assembles it from the mastery ledger and the review
// forecast.
type Snapshot struct {
	GradeLevel  int         `json:"grade_level"`
	DomainFocus string      `json:"domain_focus"`
	Strengths   []FocusNode `json:"strengths"`
	Weaknesses  []FocusNode `json:"weaknesses"`
	DueReviews  []FocusNode `json:"due_reviews"`
}

// Empty reports whether the snapshot carries nothing to plan from.
func (s Snapshot) Empty() bool {
	return len(s.Strengths) == 0 && len(s.Weaknesses) == 0 && len(s.DueReviews) == 0
}

// PlanItem is one suggested activity in a lesson plan.
type PlanItem struct {
	NodeCode string `json:"node_code"`
	Activity string `json:"activity"`
	Reason   string `json:"reason"`
}

// Plan is a generated lesson plan. It is never persisted; each request
// produces a fresh one.
type Plan struct {
	StudentID   uuid.UUID  `json:"student_id"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	Items       []PlanItem `json:"items"`
	GeneratedAt time.Time  `json:"generated_at"`
}

// Generator defines the interface for generating lesson plans from a
// student snapshot. This interface serves as a boundary between the
// application core and external AI/LLM services.
type Generator interface {
	// GeneratePlan creates a lesson plan for the student based on the
	// provided snapshot. Returns a Plan or an error if generation fails
	// (see errors.go for the specific error types).
	GeneratePlan(ctx context.Context, studentID uuid.UUID, snapshot Snapshot) (*Plan, error)
}
