package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/nexuslearn/nexus-api/internal/domain"
)

// NodeFilter narrows ListNodes results. Zero values mean "no filter".
type NodeFilter struct {
	GradeLevel int
	Domain     string
}

// KnowledgeGraphStore defines the read interface over the curriculum's
// knowledge graph. The graph is authored out of band and immutable at
// runtime, so there are no write operations here; the seed tooling writes
// through its own path.
type KnowledgeGraphStore interface {
	// GetNodeByID retrieves a knowledge node, including its prerequisite
	// set and outgoing branch edges.
	// Returns ErrNodeNotFound if the node does not exist.
	GetNodeByID(ctx context.Context, id uuid.UUID) (*domain.KnowledgeNode, error)

	// GetNodeByCode retrieves a knowledge node by its human-readable
	// curriculum code.
	// Returns ErrNodeNotFound if the node does not exist.
	GetNodeByCode(ctx context.Context, code string) (*domain.KnowledgeNode, error)

	// ListNodes retrieves all nodes matching the filter, ordered by
	// grade level then code.
	ListNodes(ctx context.Context, filter NodeFilter) ([]*domain.KnowledgeNode, error)

	// GetBranchEdge retrieves a single branch edge by ID.
	// Returns ErrBranchNotFound if the edge does not exist.
	GetBranchEdge(ctx context.Context, id uuid.UUID) (*domain.BranchEdge, error)

	// ListBranchEdges retrieves every branch edge in the graph. The edge
	// set is small and read-mostly; unlock evaluation walks all of it.
	ListBranchEdges(ctx context.Context) ([]*domain.BranchEdge, error)
}
