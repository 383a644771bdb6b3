package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/nexuslearn/nexus-api/internal/api/shared"
	"github.com/nexuslearn/nexus-api/internal/platform/logger"
	"github.com/nexuslearn/nexus-api/internal/store"
)

// NodeHandler serves read access to the knowledge graph.
type NodeHandler struct {
	nodes  store.KnowledgeGraphStore
	logger *slog.Logger
}

// NewNodeHandler creates a new NodeHandler.
func NewNodeHandler(nodes store.KnowledgeGraphStore, log *slog.Logger) *NodeHandler {
	if nodes == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("nodes cannot be nil for NodeHandler")
	}
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for NodeHandler")
	}

	return &NodeHandler{
		nodes:  nodes,
		logger: log.With(slog.String("component", "node_handler")),
	}
}

// ListNodes handles GET /nodes requests. Optional grade_level and domain
// query parameters narrow the listing.
func (h *NodeHandler) ListNodes(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var filter store.NodeFilter
	if raw := r.URL.Query().Get("grade_level"); raw != "" {
		gradeLevel, err := strconv.Atoi(raw)
		if err != nil || gradeLevel < 1 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "grade_level must be a positive integer")
			return
		}
		filter.GradeLevel = gradeLevel
	}
	filter.Domain = r.URL.Query().Get("domain")

	nodes, err := h.nodes.ListNodes(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list knowledge nodes")
		return
	}

	log.Debug("listed knowledge nodes",
		slog.Int("count", len(nodes)),
		slog.Int("grade_level", filter.GradeLevel),
		slog.String("domain", filter.Domain))
	shared.RespondWithJSON(w, r, http.StatusOK, NodeListResponse{Nodes: nodes})
}

// GetNode handles GET /nodes/{id} requests.
func (h *NodeHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	nodeID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	node, err := h.nodes.GetNodeByID(r.Context(), nodeID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, node)
}
