package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/nexuslearn/nexus-api/internal/domain"
	"github.com/nexuslearn/nexus-api/internal/service"
)

// Common request/response structures

// RegisterRequest defines the payload for the student registration endpoint.
type RegisterRequest struct {
	Email       string `json:"email"        validate:"required,email"`
	Password    string `json:"password"     validate:"required,min=12,max=72"`
	DisplayName string `json:"display_name" validate:"required"`
	GradeLevel  int    `json:"grade_level"  validate:"required,gte=1,lte=12"`
	DomainFocus string `json:"domain_focus" validate:"required"`
}

// LoginRequest defines the payload for the student login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	StudentID uuid.UUID `json:"student_id"`
	Token     string    `json:"token"`
}

// RecordInteractionRequest defines the payload for submitting a graded
// interaction against a knowledge node.
type RecordInteractionRequest struct {
	NodeID      uuid.UUID `json:"node_id"      validate:"required"`
	Correctness float64   `json:"correctness"  validate:"gte=0,lte=1"`
	LatencyMs   int       `json:"latency_ms"   validate:"gte=0"`
	HintCount   int       `json:"hint_count"   validate:"gte=0"`
}

// RecordInteractionResponse reports the outcome of a ledger append: the
// updated mastery state plus any branches that just became available.
type RecordInteractionResponse struct {
	NodeID             uuid.UUID            `json:"node_id"`
	MasteryLevel       domain.MasteryLevel  `json:"mastery_level"`
	PreviousLevel      domain.MasteryLevel  `json:"previous_level"`
	LevelChanged       bool                 `json:"level_changed"`
	TrulyMastered      bool                 `json:"truly_mastered"`
	NextReviewDue      *time.Time           `json:"next_review_due,omitempty"`
	ReviewIntervalDays int                  `json:"review_interval_days"`
	NewlyAvailable     []*domain.BranchEdge `json:"newly_available,omitempty"`
}

// BranchStatusResponse pairs a branch edge with its derived state for the
// authenticated student.
type BranchStatusResponse struct {
	Edge  *domain.BranchEdge `json:"edge"`
	State domain.BranchState `json:"state"`
}

// newBranchStatusResponses converts the service read model into the wire
// shape.
func newBranchStatusResponses(statuses []service.BranchStatus) []BranchStatusResponse {
	out := make([]BranchStatusResponse, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, BranchStatusResponse{Edge: s.Edge, State: s.State})
	}
	return out
}

// BranchChoiceResponse reports a recorded branch choice together with the
// node the student progresses into.
type BranchChoiceResponse struct {
	Choice   *domain.BranchChoice  `json:"choice"`
	NextNode *domain.KnowledgeNode `json:"next_node"`
}

// BranchUnlockResponse lists the branches that became available during an
// explicit unlock re-check.
type BranchUnlockResponse struct {
	NewlyAvailable []*domain.BranchEdge `json:"newly_available"`
}

// NodeListResponse wraps a filtered listing of the knowledge graph.
type NodeListResponse struct {
	Nodes []*domain.KnowledgeNode `json:"nodes"`
}
