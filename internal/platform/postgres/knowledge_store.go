package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/nexuslearn/nexus-api/internal/domain"
	"github.com/nexuslearn/nexus-api/internal/platform/logger"
	"github.com/nexuslearn/nexus-api/internal/store"
)

// PostgresKnowledgeGraphStore implements the store.KnowledgeGraphStore
// interface using a PostgreSQL database as the storage backend. Nodes and
// branch edges live in separate tables; loading a node also loads its
// outgoing edges.
type PostgresKnowledgeGraphStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresKnowledgeGraphStore creates a new PostgreSQL implementation of
// the KnowledgeGraphStore interface. If logger is nil, a default logger
// will be used.
func NewPostgresKnowledgeGraphStore(db store.DBTX, logger *slog.Logger) *PostgresKnowledgeGraphStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresKnowledgeGraphStore{
		db:     db,
		logger: logger.With(slog.String("component", "knowledge_graph_store")),
	}
}

// Ensure PostgresKnowledgeGraphStore implements store.KnowledgeGraphStore interface
var _ store.KnowledgeGraphStore = (*PostgresKnowledgeGraphStore)(nil)

const nodeColumns = `id, code, title, domain, grade_level, difficulty, prerequisites, exclusive_choice, created_at`

// GetNodeByID implements store.KnowledgeGraphStore.GetNodeByID
// Returns store.ErrNodeNotFound if the node does not exist.
func (s *PostgresKnowledgeGraphStore) GetNodeByID(ctx context.Context, id uuid.UUID) (*domain.KnowledgeNode, error) {
	query := fmt.Sprintf(`SELECT %s FROM knowledge_nodes WHERE id = $1`, nodeColumns)
	return s.getNode(ctx, query, id)
}

// GetNodeByCode implements store.KnowledgeGraphStore.GetNodeByCode
// Returns store.ErrNodeNotFound if the node does not exist.
func (s *PostgresKnowledgeGraphStore) GetNodeByCode(ctx context.Context, code string) (*domain.KnowledgeNode, error) {
	query := fmt.Sprintf(`SELECT %s FROM knowledge_nodes WHERE code = $1`, nodeColumns)
	return s.getNode(ctx, query, code)
}

func (s *PostgresKnowledgeGraphStore) getNode(ctx context.Context, query string, arg any) (*domain.KnowledgeNode, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	node, err := scanNode(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("knowledge node not found")
			return nil, store.ErrNodeNotFound
		}
		log.Error("failed to get knowledge node",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	edges, err := s.edgesFrom(ctx, node.ID)
	if err != nil {
		log.Error("failed to load branch edges for node",
			slog.String("error", err.Error()),
			slog.String("node_id", node.ID.String()))
		return nil, MapError(err)
	}
	node.Branches = edges

	return node, nil
}

// ListNodes implements store.KnowledgeGraphStore.ListNodes
// Results are ordered by grade level then code for stable listings.
func (s *PostgresKnowledgeGraphStore) ListNodes(ctx context.Context, filter store.NodeFilter) ([]*domain.KnowledgeNode, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := fmt.Sprintf(`
		SELECT %s
		FROM knowledge_nodes
		WHERE ($1 = 0 OR grade_level = $1)
		  AND ($2 = '' OR domain = $2)
		ORDER BY grade_level, code
	`, nodeColumns)

	rows, err := s.db.QueryContext(ctx, query, filter.GradeLevel, filter.Domain)
	if err != nil {
		log.Error("failed to query knowledge nodes",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	var nodes []*domain.KnowledgeNode
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			log.Error("failed to scan knowledge node row",
				slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		nodes = append(nodes, node)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	if nodes == nil {
		return []*domain.KnowledgeNode{}, nil
	}

	// One pass over all edges beats a query per node.
	edges, err := s.ListBranchEdges(ctx)
	if err != nil {
		return nil, err
	}
	byFrom := make(map[uuid.UUID][]domain.BranchEdge)
	for _, e := range edges {
		byFrom[e.FromNodeID] = append(byFrom[e.FromNodeID], *e)
	}
	for _, node := range nodes {
		node.Branches = byFrom[node.ID]
	}

	log.Debug("listed knowledge nodes", slog.Int("count", len(nodes)))
	return nodes, nil
}

// GetBranchEdge implements store.KnowledgeGraphStore.GetBranchEdge
// Returns store.ErrBranchNotFound if the edge does not exist.
func (s *PostgresKnowledgeGraphStore) GetBranchEdge(ctx context.Context, id uuid.UUID) (*domain.BranchEdge, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, from_node_id, to_node_id, label, condition
		FROM branch_edges
		WHERE id = $1
	`

	edge, err := scanBranchEdge(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("branch edge not found", slog.String("branch_id", id.String()))
			return nil, store.ErrBranchNotFound
		}
		log.Error("failed to get branch edge",
			slog.String("error", err.Error()),
			slog.String("branch_id", id.String()))
		return nil, MapError(err)
	}

	return edge, nil
}

// ListBranchEdges implements store.KnowledgeGraphStore.ListBranchEdges
func (s *PostgresKnowledgeGraphStore) ListBranchEdges(ctx context.Context) ([]*domain.BranchEdge, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, from_node_id, to_node_id, label, condition
		FROM branch_edges
		ORDER BY from_node_id, label
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to query branch edges",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	var edges []*domain.BranchEdge
	for rows.Next() {
		edge, err := scanBranchEdge(rows)
		if err != nil {
			log.Error("failed to scan branch edge row",
				slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		edges = append(edges, edge)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	if edges == nil {
		edges = []*domain.BranchEdge{}
	}
	return edges, nil
}

func scanNode(row rowScanner) (*domain.KnowledgeNode, error) {
	var node domain.KnowledgeNode
	var prereqJSON []byte

	err := row.Scan(
		&node.ID,
		&node.Code,
		&node.Title,
		&node.Domain,
		&node.GradeLevel,
		&node.Difficulty,
		&prereqJSON,
		&node.ExclusiveChoice,
		&node.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(prereqJSON) > 0 {
		if err := json.Unmarshal(prereqJSON, &node.Prerequisites); err != nil {
			return nil, fmt.Errorf("failed to unmarshal prerequisites: %w", err)
		}
	}

	return &node, nil
}

func scanBranchEdge(row rowScanner) (*domain.BranchEdge, error) {
	var edge domain.BranchEdge
	var conditionJSON []byte

	err := row.Scan(
		&edge.ID,
		&edge.FromNodeID,
		&edge.ToNodeID,
		&edge.Label,
		&conditionJSON,
	)
	if err != nil {
		return nil, err
	}

	if len(conditionJSON) > 0 {
		if err := json.Unmarshal(conditionJSON, &edge.Condition); err != nil {
			return nil, fmt.Errorf("failed to unmarshal unlock condition: %w", err)
		}
	}

	return &edge, nil
}

func (s *PostgresKnowledgeGraphStore) edgesFrom(ctx context.Context, nodeID uuid.UUID) ([]domain.BranchEdge, error) {
	query := `
		SELECT id, from_node_id, to_node_id, label, condition
		FROM branch_edges
		WHERE from_node_id = $1
		ORDER BY label
	`

	rows, err := s.db.QueryContext(ctx, query, nodeID)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows, s.logger)

	var edges []domain.BranchEdge
	for rows.Next() {
		edge, err := scanBranchEdge(rows)
		if err != nil {
			return nil, err
		}
		edges = append(edges, *edge)
	}
	return edges, rows.Err()
}

func closeRows(rows *sql.Rows, log *slog.Logger) {
	if err := rows.Close(); err != nil {
		log.Error("failed to close rows", slog.String("error", err.Error()))
	}
}
