package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/nexuslearn/nexus-api/internal/api/shared"
	"github.com/nexuslearn/nexus-api/internal/platform/logger"
	"github.com/nexuslearn/nexus-api/internal/platform/metrics"
	"github.com/nexuslearn/nexus-api/internal/service"
)

// InteractionHandler exposes the ledger write path over HTTP.
type InteractionHandler struct {
	learningService service.LearningService
	metrics         *metrics.Metrics
	validator       *validator.Validate
	logger          *slog.Logger
}

// NewInteractionHandler creates a new InteractionHandler.
func NewInteractionHandler(
	learningService service.LearningService,
	m *metrics.Metrics,
	log *slog.Logger,
) *InteractionHandler {
	if learningService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("learningService cannot be nil for InteractionHandler")
	}
	if m == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("metrics cannot be nil for InteractionHandler")
	}
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for InteractionHandler")
	}

	return &InteractionHandler{
		learningService: learningService,
		metrics:         m,
		validator:       validator.New(),
		logger:          log.With(slog.String("component", "interaction_handler")),
	}
}

// RecordInteraction handles POST /students/me/interactions requests. It
// appends the graded interaction to the authenticated student's ledger and
// reports the resulting mastery state.
func (h *InteractionHandler) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	studentID, ok := requireStudentID(w, r)
	if !ok {
		return
	}

	var req RecordInteractionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	result, err := h.learningService.RecordInteraction(r.Context(), studentID, req.NodeID, service.InteractionInput{
		Correctness: req.Correctness,
		LatencyMs:   req.LatencyMs,
		HintCount:   req.HintCount,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record interaction")
		return
	}

	h.metrics.InteractionsRecorded.WithLabelValues(string(result.Record.MasteryLevel)).Inc()
	if n := len(result.NewlyAvailable); n > 0 {
		h.metrics.BranchUnlocks.Add(float64(n))
	}

	log.Debug("interaction recorded",
		slog.String("student_id", studentID.String()),
		slog.String("node_id", req.NodeID.String()),
		slog.String("mastery_level", string(result.Record.MasteryLevel)),
		slog.Bool("level_changed", result.LevelChanged))

	shared.RespondWithJSON(w, r, http.StatusCreated, RecordInteractionResponse{
		NodeID:             result.Record.NodeID,
		MasteryLevel:       result.Record.MasteryLevel,
		PreviousLevel:      result.PreviousLevel,
		LevelChanged:       result.LevelChanged,
		TrulyMastered:      result.Record.TrulyMastered,
		NextReviewDue:      result.Record.NextReviewDue,
		ReviewIntervalDays: result.Record.ReviewIntervalDays,
		NewlyAvailable:     result.NewlyAvailable,
	})
}
