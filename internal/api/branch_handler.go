package api

import (
	"log/slog"
	"net/http"

	"github.com/nexuslearn/nexus-api/internal/api/shared"
	"github.com/nexuslearn/nexus-api/internal/domain"
	"github.com/nexuslearn/nexus-api/internal/platform/logger"
	"github.com/nexuslearn/nexus-api/internal/platform/metrics"
	"github.com/nexuslearn/nexus-api/internal/service"
)

// BranchHandler exposes the branch progression state machine over HTTP.
type BranchHandler struct {
	progressionService service.ProgressionService
	metrics            *metrics.Metrics
	logger             *slog.Logger
}

// NewBranchHandler creates a new BranchHandler.
func NewBranchHandler(
	progressionService service.ProgressionService,
	m *metrics.Metrics,
	log *slog.Logger,
) *BranchHandler {
	if progressionService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("progressionService cannot be nil for BranchHandler")
	}
	if m == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("metrics cannot be nil for BranchHandler")
	}
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for BranchHandler")
	}

	return &BranchHandler{
		progressionService: progressionService,
		metrics:            m,
		logger:             log.With(slog.String("component", "branch_handler")),
	}
}

// ListBranches handles GET /students/me/branches requests. Every branch
// edge in the graph comes back with its derived state for the student.
func (h *BranchHandler) ListBranches(w http.ResponseWriter, r *http.Request) {
	studentID, ok := requireStudentID(w, r)
	if !ok {
		return
	}

	statuses, err := h.progressionService.ListBranchStatuses(r.Context(), studentID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list branch statuses")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newBranchStatusResponses(statuses))
}

// ChooseBranch handles POST /students/me/branches/{branchID}/choose
// requests. A locked branch is re-evaluated before the choice is rejected.
func (h *BranchHandler) ChooseBranch(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	studentID, ok := requireStudentID(w, r)
	if !ok {
		return
	}

	branchID, err := getPathUUID(r, "branchID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.progressionService.ChooseBranch(r.Context(), studentID, branchID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to choose branch")
		return
	}

	log.Debug("branch chosen",
		slog.String("student_id", studentID.String()),
		slog.String("branch_id", branchID.String()),
		slog.String("next_node_id", result.NextNode.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, BranchChoiceResponse{
		Choice:   result.Choice,
		NextNode: result.NextNode,
	})
}

// CheckUnlocks handles POST /students/me/branches/check requests. It
// re-evaluates every locked branch against the ledger and reports the ones
// that just became available.
func (h *BranchHandler) CheckUnlocks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	studentID, ok := requireStudentID(w, r)
	if !ok {
		return
	}

	unlocked, err := h.progressionService.CheckBranchUnlock(r.Context(), studentID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to check branch unlocks")
		return
	}

	if unlocked == nil {
		unlocked = []*domain.BranchEdge{}
	}
	if len(unlocked) > 0 {
		h.metrics.BranchUnlocks.Add(float64(len(unlocked)))
		log.Info("branches unlocked",
			slog.String("student_id", studentID.String()),
			slog.Int("count", len(unlocked)))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, BranchUnlockResponse{NewlyAvailable: unlocked})
}
