package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nexuslearn/nexus-api/internal/domain"
	"github.com/nexuslearn/nexus-api/internal/domain/mastery"
	"github.com/nexuslearn/nexus-api/internal/domain/srs"
	"github.com/nexuslearn/nexus-api/internal/events"
	"github.com/nexuslearn/nexus-api/internal/platform/logger"
	"github.com/nexuslearn/nexus-api/internal/store"
)

// defaultWriteRetryLimit bounds the optimistic-concurrency retry loop on
// ledger appends.
const defaultWriteRetryLimit = 3

// InteractionInput is the graded outcome a collaborator submits for a
// student and node.
type InteractionInput struct {
	Correctness float64 `json:"correctness"`
	LatencyMs   int     `json:"latency_ms"`
	HintCount   int     `json:"hint_count"`
}

// RecordInteractionResult is everything a caller learns from one ledger
// append: the committed record plus the level movement and any branches
// that just became available.
type RecordInteractionResult struct {
	Record         *domain.MasteryRecord
	PreviousLevel  domain.MasteryLevel
	LevelChanged   bool
	NewlyAvailable []*domain.BranchEdge
}

// UnlockChecker re-evaluates branch unlock conditions for a student and
// returns the branches that just became available. The progression service
// implements it; the indirection keeps the ledger write path from
// depending on the progression service type directly.
type UnlockChecker interface {
	CheckBranchUnlock(ctx context.Context, studentID uuid.UUID) ([]*domain.BranchEdge, error)
}

// LearningService is the single write path into the mastery ledger.
type LearningService interface {
	// RecordInteraction appends a graded interaction to the student's
	// ledger entry for the node, re-evaluates the mastery window, updates
	// the review schedule, emits the ledger event and re-checks branch
	// unlocks.
	//
	// Returns ErrStudentNotFound or ErrNodeNotFound for unknown IDs,
	// ErrInvalidInput for an out-of-range interaction, and
	// ErrConcurrentModification when the retry budget is exhausted.
	RecordInteraction(
		ctx context.Context,
		studentID, nodeID uuid.UUID,
		input InteractionInput,
	) (*RecordInteractionResult, error)
}

// Verify interface compliance at compile time
var _ LearningService = (*learningServiceImpl)(nil)

type learningServiceImpl struct {
	students      store.StudentRegistry
	nodes         store.KnowledgeGraphStore
	ledger        store.MasteryStore
	srsService    srs.Service
	masteryParams *mastery.Params
	emitter       events.EventEmitter
	unlockChecker UnlockChecker
	clock         Clock
	retryLimit    int
	logger        *slog.Logger
}

// LearningServiceConfig carries the optional knobs for NewLearningService.
// Zero values keep the defaults.
type LearningServiceConfig struct {
	MasteryParams *mastery.Params
	RetryLimit    int
	Clock         Clock
}

// NewLearningService creates the ledger write service. The unlockChecker
// may be nil, in which case branch unlocks are not re-evaluated on append
// (used by tests that exercise the ledger path in isolation).
func NewLearningService(
	students store.StudentRegistry,
	nodes store.KnowledgeGraphStore,
	ledger store.MasteryStore,
	srsService srs.Service,
	emitter events.EventEmitter,
	unlockChecker UnlockChecker,
	cfg LearningServiceConfig,
	log *slog.Logger,
) LearningService {
	if students == nil {
		panic("students cannot be nil")
	}
	if nodes == nil {
		panic("nodes cannot be nil")
	}
	if ledger == nil {
		panic("ledger cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}
	if emitter == nil {
		panic("emitter cannot be nil")
	}

	params := cfg.MasteryParams
	if params == nil {
		params = mastery.NewDefaultParams()
	}
	retryLimit := cfg.RetryLimit
	if retryLimit <= 0 {
		retryLimit = defaultWriteRetryLimit
	}
	clock := cfg.Clock
	if clock == nil {
		clock = NewSystemClock()
	}
	if log == nil {
		log = slog.Default()
	}

	return &learningServiceImpl{
		students:      students,
		nodes:         nodes,
		ledger:        ledger,
		srsService:    srsService,
		masteryParams: params,
		emitter:       emitter,
		unlockChecker: unlockChecker,
		clock:         clock,
		retryLimit:    retryLimit,
		logger:        log.With(slog.String("component", "learning_service")),
	}
}

// RecordInteraction implements LearningService.RecordInteraction.
func (s *learningServiceImpl) RecordInteraction(
	ctx context.Context,
	studentID, nodeID uuid.UUID,
	input InteractionInput,
) (*RecordInteractionResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.clock.Now()

	interaction := domain.Interaction{
		Correctness: input.Correctness,
		LatencyMs:   input.LatencyMs,
		HintCount:   input.HintCount,
		Timestamp:   now,
	}
	if err := interaction.Validate(); err != nil {
		log.Warn("interaction rejected",
			slog.String("error", err.Error()),
			slog.String("student_id", studentID.String()),
			slog.String("node_id", nodeID.String()))
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if _, err := s.students.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, store.ErrStudentNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, NewServiceError("record_interaction", "failed to load student", err)
	}

	node, err := s.nodes.GetNodeByID(ctx, nodeID)
	if err != nil {
		if errors.Is(err, store.ErrNodeNotFound) {
			return nil, ErrNodeNotFound
		}
		return nil, NewServiceError("record_interaction", "failed to load knowledge node", err)
	}

	var result *RecordInteractionResult
	for attempt := 0; attempt < s.retryLimit; attempt++ {
		result, err = s.tryAppend(ctx, studentID, node, interaction, now)
		if err == nil {
			break
		}
		if !errors.Is(err, store.ErrConcurrentModification) {
			return nil, err
		}
		log.Debug("ledger append lost the race, retrying",
			slog.String("student_id", studentID.String()),
			slog.String("node_id", nodeID.String()),
			slog.Int("attempt", attempt+1))
	}
	if err != nil {
		log.Warn("ledger append retry budget exhausted",
			slog.String("student_id", studentID.String()),
			slog.String("node_id", nodeID.String()))
		return nil, ErrConcurrentModification
	}

	s.afterCommit(ctx, result, node, interaction, now)

	log.Info("interaction recorded",
		slog.String("student_id", studentID.String()),
		slog.String("node_id", nodeID.String()),
		slog.String("mastery_level", string(result.Record.MasteryLevel)),
		slog.Bool("level_changed", result.LevelChanged),
		slog.Int("newly_available_branches", len(result.NewlyAvailable)))

	return result, nil
}

// tryAppend runs one read-evaluate-write cycle against the ledger.
func (s *learningServiceImpl) tryAppend(
	ctx context.Context,
	studentID uuid.UUID,
	node *domain.KnowledgeNode,
	interaction domain.Interaction,
	now time.Time,
) (*RecordInteractionResult, error) {
	record, err := s.ledger.Get(ctx, studentID, node.ID)
	expectedRevision := int64(0)
	switch {
	case err == nil:
		expectedRevision = record.Revision
	case errors.Is(err, store.ErrMasteryRecordNotFound):
		record, err = domain.NewMasteryRecord(studentID, node.ID, now)
		if err != nil {
			return nil, NewServiceError("record_interaction", "failed to create ledger entry", err)
		}
	default:
		return nil, NewServiceError("record_interaction", "failed to read ledger", err)
	}

	previousLevel := record.MasteryLevel
	hadSchedule := record.NextReviewDue != nil

	next := record.Clone()
	next.History = append(next.History, interaction)
	next.LastReviewedAt = now

	evaluation, err := mastery.Evaluate(next, now, s.masteryParams)
	if err != nil {
		return nil, NewServiceError("record_interaction", "mastery evaluation failed", err)
	}
	next.MasteryLevel = evaluation.Level
	next.TrulyMastered = evaluation.TrulyMastered
	next.FirstMasteredOn = evaluation.FirstMasteredOn

	passed := interaction.Correctness >= s.masteryParams.CorrectThreshold
	switch {
	case hadSchedule:
		// Any interaction on a scheduled node counts as a review attempt.
		next, err = s.srsService.ApplyReview(next, passed, now)
	case evaluation.Level == domain.MasteryMastered:
		next, err = s.srsService.StartSchedule(next, now)
	}
	if err != nil {
		return nil, NewServiceError("record_interaction", "review scheduling failed", err)
	}

	if err := s.ledger.CompareAndAppend(ctx, next, expectedRevision); err != nil {
		if errors.Is(err, store.ErrConcurrentModification) {
			return nil, err
		}
		return nil, NewServiceError("record_interaction", "failed to commit ledger append", err)
	}

	return &RecordInteractionResult{
		Record:        next,
		PreviousLevel: previousLevel,
		LevelChanged:  next.MasteryLevel != previousLevel,
	}, nil
}

// afterCommit runs the post-append reactions. Neither a failed event
// handler nor a failed unlock re-check can undo a committed append, so
// both are logged and swallowed.
func (s *learningServiceImpl) afterCommit(
	ctx context.Context,
	result *RecordInteractionResult,
	node *domain.KnowledgeNode,
	interaction domain.Interaction,
	now time.Time,
) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	payload := events.InteractionRecordedPayload{
		StudentID:      result.Record.StudentID,
		NodeID:         node.ID,
		NodeDomain:     node.Domain,
		NodeDifficulty: node.Difficulty,
		Correct:        interaction.Correctness >= s.masteryParams.CorrectThreshold,
		MasteryLevel:   result.Record.MasteryLevel,
		OccurredAt:     now,
	}
	event, err := events.NewLedgerEvent(events.TypeInteractionRecorded, payload)
	if err != nil {
		log.Error("failed to build ledger event",
			slog.String("error", err.Error()),
			slog.String("student_id", result.Record.StudentID.String()))
	} else if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Error("ledger event handler failed",
			slog.String("error", err.Error()),
			slog.String("event_id", event.ID.String()))
	}

	if s.unlockChecker == nil {
		return
	}
	newlyAvailable, err := s.unlockChecker.CheckBranchUnlock(ctx, result.Record.StudentID)
	if err != nil {
		log.Error("branch unlock re-check failed",
			slog.String("error", err.Error()),
			slog.String("student_id", result.Record.StudentID.String()))
		return
	}
	result.NewlyAvailable = newlyAvailable
}
