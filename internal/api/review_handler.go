package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/nexuslearn/nexus-api/internal/api/shared"
	"github.com/nexuslearn/nexus-api/internal/platform/logger"
	"github.com/nexuslearn/nexus-api/internal/platform/metrics"
	"github.com/nexuslearn/nexus-api/internal/service"
)

// ReviewHandler serves spaced-repetition forecast queries.
type ReviewHandler struct {
	reviewService service.ReviewService
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(
	reviewService service.ReviewService,
	m *metrics.Metrics,
	log *slog.Logger,
) *ReviewHandler {
	if reviewService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("reviewService cannot be nil for ReviewHandler")
	}
	if m == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("metrics cannot be nil for ReviewHandler")
	}
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ReviewHandler")
	}

	return &ReviewHandler{
		reviewService: reviewService,
		metrics:       m,
		logger:        log.With(slog.String("component", "review_handler")),
	}
}

// GetUpcomingReviews handles GET /students/me/reviews requests. The
// optional days query parameter sets the forecast horizon.
func (h *ReviewHandler) GetUpcomingReviews(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	studentID, ok := requireStudentID(w, r)
	if !ok {
		return
	}

	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "days must be an integer")
			return
		}
		days = parsed
	}

	entries, err := h.reviewService.GetUpcomingReviews(r.Context(), studentID, days)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to build review forecast")
		return
	}

	h.metrics.ReviewsServed.Inc()
	log.Debug("served review forecast",
		slog.String("student_id", studentID.String()),
		slog.Int("days", days),
		slog.Int("count", len(entries)))
	shared.RespondWithJSON(w, r, http.StatusOK, entries)
}

// GetReviewSummary handles GET /students/me/reviews/summary requests.
func (h *ReviewHandler) GetReviewSummary(w http.ResponseWriter, r *http.Request) {
	studentID, ok := requireStudentID(w, r)
	if !ok {
		return
	}

	summary, err := h.reviewService.GetDueReviewSummary(r.Context(), studentID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to build review summary")
		return
	}

	h.metrics.ReviewsServed.Inc()
	shared.RespondWithJSON(w, r, http.StatusOK, summary)
}
