package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/nexuslearn/nexus-api/internal/api/shared"
	"github.com/nexuslearn/nexus-api/internal/domain"
	"github.com/nexuslearn/nexus-api/internal/domain/nexus"
	"github.com/nexuslearn/nexus-api/internal/lessonplan"
	"github.com/nexuslearn/nexus-api/internal/platform/logger"
	"github.com/nexuslearn/nexus-api/internal/service"
	"github.com/nexuslearn/nexus-api/internal/store"
)

// snapshotFocusLimit caps how many strengths and weaknesses feed the
// language model; the prompt stays small and the plan stays focused.
const snapshotFocusLimit = 3

// LessonPlanHandler assembles a student snapshot from the engine read
// models and hands it to the plan generator.
type LessonPlanHandler struct {
	generator     lessonplan.Generator
	students      store.StudentRegistry
	nodes         store.KnowledgeGraphStore
	ledger        store.MasteryStore
	nexusService  service.NexusService
	reviewService service.ReviewService
	logger        *slog.Logger
}

// NewLessonPlanHandler creates a new LessonPlanHandler. A nil generator is
// allowed: the deployment may run without an LLM key, in which case the
// endpoint reports the feature as unavailable.
func NewLessonPlanHandler(
	generator lessonplan.Generator,
	students store.StudentRegistry,
	nodes store.KnowledgeGraphStore,
	ledger store.MasteryStore,
	nexusService service.NexusService,
	reviewService service.ReviewService,
	log *slog.Logger,
) *LessonPlanHandler {
	if students == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("students cannot be nil for LessonPlanHandler")
	}
	if nodes == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("nodes cannot be nil for LessonPlanHandler")
	}
	if ledger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("ledger cannot be nil for LessonPlanHandler")
	}
	if nexusService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("nexusService cannot be nil for LessonPlanHandler")
	}
	if reviewService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("reviewService cannot be nil for LessonPlanHandler")
	}
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for LessonPlanHandler")
	}

	return &LessonPlanHandler{
		generator:     generator,
		students:      students,
		nodes:         nodes,
		ledger:        ledger,
		nexusService:  nexusService,
		reviewService: reviewService,
		logger:        log.With(slog.String("component", "lessonplan_handler")),
	}
}

// GeneratePlan handles POST /students/me/lesson-plan requests.
func (h *LessonPlanHandler) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	if h.generator == nil {
		shared.RespondWithError(w, r, http.StatusServiceUnavailable, "Lesson plan generation is not configured")
		return
	}

	studentID, ok := requireStudentID(w, r)
	if !ok {
		return
	}

	snapshot, err := h.buildSnapshot(r.Context(), studentID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to assemble student snapshot")
		return
	}

	plan, err := h.generator.GeneratePlan(r.Context(), studentID, *snapshot)
	if err != nil {
		switch {
		case errors.Is(err, lessonplan.ErrEmptySnapshot):
			shared.RespondWithError(w, r, http.StatusConflict, "Not enough learning activity to plan from yet")
		case errors.Is(err, lessonplan.ErrContentBlocked):
			shared.RespondWithErrorAndLog(w, r, http.StatusUnprocessableEntity, "Plan generation was blocked", err)
		case errors.Is(err, lessonplan.ErrTransientFailure):
			shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, "Plan generation is temporarily unavailable", err)
		default:
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to generate lesson plan", err)
		}
		return
	}

	log.Info("lesson plan generated",
		slog.String("student_id", studentID.String()),
		slog.Int("items", len(plan.Items)))
	shared.RespondWithJSON(w, r, http.StatusOK, plan)
}

// buildSnapshot projects the engine read models into the generator input:
// the strongest and weakest practiced nodes by nexus score plus everything
// due for review inside the default horizon.
func (h *LessonPlanHandler) buildSnapshot(
	ctx context.Context,
	studentID uuid.UUID,
) (*lessonplan.Snapshot, error) {
	student, err := h.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	scores, err := h.nexusService.GetAllNexusScores(ctx, studentID)
	if err != nil {
		return nil, err
	}

	records, err := h.ledger.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	levels := make(map[uuid.UUID]domain.MasteryLevel, len(records))
	for _, record := range records {
		levels[record.NodeID] = record.MasteryLevel
	}

	snapshot := &lessonplan.Snapshot{
		GradeLevel:  student.GradeLevel,
		DomainFocus: student.DomainFocus,
	}

	// Scores arrive ordered strongest first, so strengths come off the
	// front and weaknesses off the back.
	for i := 0; i < len(scores) && i < snapshotFocusLimit; i++ {
		focus, err := h.focusNode(ctx, scores[i], levels)
		if err != nil {
			return nil, err
		}
		snapshot.Strengths = append(snapshot.Strengths, focus)
	}
	for i := len(scores) - 1; i >= 0 && len(snapshot.Weaknesses) < snapshotFocusLimit; i-- {
		if i < snapshotFocusLimit {
			// Too few practiced nodes to split into distinct halves.
			break
		}
		focus, err := h.focusNode(ctx, scores[i], levels)
		if err != nil {
			return nil, err
		}
		snapshot.Weaknesses = append(snapshot.Weaknesses, focus)
	}

	reviews, err := h.reviewService.GetUpcomingReviews(ctx, studentID, 0)
	if err != nil {
		return nil, err
	}
	for _, entry := range reviews {
		node, err := h.nodes.GetNodeByID(ctx, entry.NodeID)
		if err != nil {
			return nil, err
		}
		snapshot.DueReviews = append(snapshot.DueReviews, lessonplan.FocusNode{
			Code:         entry.NodeCode,
			Title:        entry.NodeTitle,
			Domain:       node.Domain,
			MasteryLevel: string(entry.MasteryLevel),
		})
	}

	return snapshot, nil
}

func (h *LessonPlanHandler) focusNode(
	ctx context.Context,
	score nexus.Score,
	levels map[uuid.UUID]domain.MasteryLevel,
) (lessonplan.FocusNode, error) {
	node, err := h.nodes.GetNodeByID(ctx, score.NodeID)
	if err != nil {
		return lessonplan.FocusNode{}, err
	}
	return lessonplan.FocusNode{
		Code:         node.Code,
		Title:        node.Title,
		Domain:       node.Domain,
		MasteryLevel: string(levels[score.NodeID]),
	}, nil
}
