package api

import (
	"log/slog"
	"net/http"

	"github.com/nexuslearn/nexus-api/internal/api/shared"
	"github.com/nexuslearn/nexus-api/internal/platform/logger"
	"github.com/nexuslearn/nexus-api/internal/service"
)

// NexusHandler serves nexus score projections.
type NexusHandler struct {
	nexusService service.NexusService
	logger       *slog.Logger
}

// NewNexusHandler creates a new NexusHandler.
func NewNexusHandler(nexusService service.NexusService, log *slog.Logger) *NexusHandler {
	if nexusService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("nexusService cannot be nil for NexusHandler")
	}
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for NexusHandler")
	}

	return &NexusHandler{
		nexusService: nexusService,
		logger:       log.With(slog.String("component", "nexus_handler")),
	}
}

// GetAllScores handles GET /students/me/nexus requests. Scores come back
// ordered strongest first.
func (h *NexusHandler) GetAllScores(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	studentID, ok := requireStudentID(w, r)
	if !ok {
		return
	}

	scores, err := h.nexusService.GetAllNexusScores(r.Context(), studentID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute nexus scores")
		return
	}

	log.Debug("computed nexus scores",
		slog.String("student_id", studentID.String()),
		slog.Int("count", len(scores)))
	shared.RespondWithJSON(w, r, http.StatusOK, scores)
}

// GetNodeScore handles GET /students/me/nexus/{nodeID} requests.
func (h *NexusHandler) GetNodeScore(w http.ResponseWriter, r *http.Request) {
	studentID, ok := requireStudentID(w, r)
	if !ok {
		return
	}

	nodeID, err := getPathUUID(r, "nodeID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	score, err := h.nexusService.CalculateNexusScore(r.Context(), studentID, nodeID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute nexus score")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, score)
}
