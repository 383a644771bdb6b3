package api

import (
	"log/slog"
	"net/http"

	"github.com/nexuslearn/nexus-api/internal/api/shared"
	"github.com/nexuslearn/nexus-api/internal/service"
)

// GamificationHandler serves the gamification read model.
type GamificationHandler struct {
	gamificationService service.GamificationService
	logger              *slog.Logger
}

// NewGamificationHandler creates a new GamificationHandler.
func NewGamificationHandler(
	gamificationService service.GamificationService,
	log *slog.Logger,
) *GamificationHandler {
	if gamificationService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("gamificationService cannot be nil for GamificationHandler")
	}
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for GamificationHandler")
	}

	return &GamificationHandler{
		gamificationService: gamificationService,
		logger:              log.With(slog.String("component", "gamification_handler")),
	}
}

// GetGamificationData handles GET /students/me/gamification requests. A
// student with no recorded activity gets the zero model.
func (h *GamificationHandler) GetGamificationData(w http.ResponseWriter, r *http.Request) {
	studentID, ok := requireStudentID(w, r)
	if !ok {
		return
	}

	data, err := h.gamificationService.GetStudentGamificationData(r.Context(), studentID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load gamification data")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, data)
}
