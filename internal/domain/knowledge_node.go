package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for KnowledgeNode and BranchEdge
var (
	ErrNodeIDEmpty          = errors.New("knowledge node ID cannot be empty")
	ErrNodeCodeEmpty        = errors.New("knowledge node code cannot be empty")
	ErrNodeTitleEmpty       = errors.New("knowledge node title cannot be empty")
	ErrNodeDomainEmpty      = errors.New("knowledge node domain cannot be empty")
	ErrNodeGradeLevelRange  = errors.New("knowledge node grade level must be between 1 and 12")
	ErrNodeDifficultyRange  = errors.New("knowledge node difficulty must be between 1 and 5")
	ErrBranchIDEmpty        = errors.New("branch edge ID cannot be empty")
	ErrBranchNodesEmpty     = errors.New("branch edge must connect two nodes")
	ErrBranchSelfReferenced = errors.New("branch edge cannot point at its own source node")
)

// Difficulty bounds for knowledge nodes.
const (
	MinDifficulty = 1
	MaxDifficulty = 5
)

// UnlockCondition gates a branch edge. A branch becomes available once the
// student holds at least MinLevel mastery on every required node. An empty
// RequiredNodeIDs set means the condition falls back to the prerequisites
// of the edge's target node.
type UnlockCondition struct {
	MinLevel        MasteryLevel `json:"min_level"`
	RequiredNodeIDs []uuid.UUID  `json:"required_node_ids,omitempty"`
}

// BranchEdge is a directed edge from a branching node to an alternative
// content path. Edges are authored with the curriculum and are immutable
// at runtime.
type BranchEdge struct {
	ID         uuid.UUID       `json:"id"`
	FromNodeID uuid.UUID       `json:"from_node_id"`
	ToNodeID   uuid.UUID       `json:"to_node_id"`
	Label      string          `json:"label"`
	Condition  UnlockCondition `json:"condition"`
}

// Validate checks that the BranchEdge has valid data.
func (e *BranchEdge) Validate() error {
	if e.ID == uuid.Nil {
		return ErrBranchIDEmpty
	}

	if e.FromNodeID == uuid.Nil || e.ToNodeID == uuid.Nil {
		return ErrBranchNodesEmpty
	}

	if e.FromNodeID == e.ToNodeID {
		return ErrBranchSelfReferenced
	}

	return nil
}

// KnowledgeNode is an atomic curriculum concept in the prerequisite graph.
// Nodes are immutable after authoring: the curriculum collaborator owns
// them and the engine only ever reads them.
type KnowledgeNode struct {
	ID            uuid.UUID   `json:"id"`
	Code          string      `json:"code"` // Human-readable curriculum code, e.g. "MATH-4-FRAC-01"
	Title         string      `json:"title"`
	Domain        string      `json:"domain"`
	GradeLevel    int         `json:"grade_level"`
	Difficulty    int         `json:"difficulty"` // 1 (introductory) to 5 (challenge)
	Prerequisites []uuid.UUID `json:"prerequisites,omitempty"`
	// Branches holds the outgoing alternative-path edges. A node with at
	// least one branch edge is a decision node.
	Branches []BranchEdge `json:"branches,omitempty"`
	// ExclusiveChoice marks a decision node where choosing one branch
	// conflicts with choosing a different one later. The common case is
	// non-exclusive: siblings stay available for future exploration.
	ExclusiveChoice bool      `json:"exclusive_choice"`
	CreatedAt       time.Time `json:"created_at"`
}

// Validate checks that the KnowledgeNode has valid data, including all of
// its branch edges.
func (n *KnowledgeNode) Validate() error {
	if n.ID == uuid.Nil {
		return ErrNodeIDEmpty
	}

	if n.Code == "" {
		return ErrNodeCodeEmpty
	}

	if n.Title == "" {
		return ErrNodeTitleEmpty
	}

	if n.Domain == "" {
		return ErrNodeDomainEmpty
	}

	if n.GradeLevel < 1 || n.GradeLevel > 12 {
		return ErrNodeGradeLevelRange
	}

	if n.Difficulty < MinDifficulty || n.Difficulty > MaxDifficulty {
		return ErrNodeDifficultyRange
	}

	for i := range n.Branches {
		if err := n.Branches[i].Validate(); err != nil {
			return err
		}
	}

	return nil
}

// IsDecisionNode reports whether the node has alternative outgoing paths.
func (n *KnowledgeNode) IsDecisionNode() bool {
	return len(n.Branches) > 0
}
