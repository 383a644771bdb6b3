package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/nexuslearn/nexus-api/internal/domain"
	"github.com/nexuslearn/nexus-api/internal/domain/gamification"
	"github.com/nexuslearn/nexus-api/internal/events"
	"github.com/nexuslearn/nexus-api/internal/platform/logger"
	"github.com/nexuslearn/nexus-api/internal/store"
)

// GamificationData is the read model served to API callers: the persisted
// state plus the values derived from it at read time.
type GamificationData struct {
	StudentID       uuid.UUID                         `json:"student_id"`
	XP              int                               `json:"xp"`
	Level           int                               `json:"level"`
	Streak          int                               `json:"streak"`
	NextLevelXP     int                               `json:"next_level_xp"`
	Badges          []string                          `json:"badges"`
	BossEligibility []string                          `json:"boss_eligibility"`
	MasteryMap      map[uuid.UUID]domain.MasteryLevel `json:"mastery_map"`
}

// GamificationService consumes ledger events into per-student XP, streak,
// badge and boss-eligibility state, and serves the derived read model.
// It is strictly downstream of the ledger: nothing here ever feeds back
// into mastery, scoring or scheduling.
type GamificationService interface {
	events.EventHandler

	// GetStudentGamificationData returns the student's gamification read
	// model. A student with no consumed events gets the zero model, not
	// an error; the streak reported is the effective one, which reads as
	// zero once a full day has passed without activity.
	GetStudentGamificationData(ctx context.Context, studentID uuid.UUID) (*GamificationData, error)
}

// Verify interface compliance at compile time
var _ GamificationService = (*gamificationServiceImpl)(nil)

type gamificationServiceImpl struct {
	states     store.GamificationStore
	ledger     store.MasteryStore
	nodes      store.KnowledgeGraphStore
	params     *gamification.Params
	clock      Clock
	retryLimit int
	logger     *slog.Logger
}

// NewGamificationService creates the gamification consumer. A nil params
// falls back to the default XP tuning.
func NewGamificationService(
	states store.GamificationStore,
	ledger store.MasteryStore,
	nodes store.KnowledgeGraphStore,
	params *gamification.Params,
	clock Clock,
	log *slog.Logger,
) GamificationService {
	if states == nil {
		panic("states cannot be nil")
	}
	if ledger == nil {
		panic("ledger cannot be nil")
	}
	if nodes == nil {
		panic("nodes cannot be nil")
	}

	if params == nil {
		params = gamification.NewDefaultParams()
	}
	if clock == nil {
		clock = NewSystemClock()
	}
	if log == nil {
		log = slog.Default()
	}

	return &gamificationServiceImpl{
		states:     states,
		ledger:     ledger,
		nodes:      nodes,
		params:     params,
		clock:      clock,
		retryLimit: defaultWriteRetryLimit,
		logger:     log.With(slog.String("component", "gamification_service")),
	}
}

// HandleEvent implements events.EventHandler. Events other than
// interaction_recorded are ignored.
func (s *gamificationServiceImpl) HandleEvent(ctx context.Context, event *events.LedgerEvent) error {
	if event.Type != events.TypeInteractionRecorded {
		return nil
	}

	log := logger.FromContextOrDefault(ctx, s.logger)

	var payload events.InteractionRecordedPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		log.Error("failed to decode ledger event payload",
			slog.String("error", err.Error()),
			slog.String("event_id", event.ID.String()))
		return fmt.Errorf("failed to decode payload: %w", err)
	}

	var err error
	for attempt := 0; attempt < s.retryLimit; attempt++ {
		err = s.applyEvent(ctx, payload)
		if err == nil {
			return nil
		}
		if !errors.Is(err, store.ErrConcurrentModification) {
			return err
		}
		log.Debug("gamification state write lost the race, retrying",
			slog.String("student_id", payload.StudentID.String()),
			slog.Int("attempt", attempt+1))
	}

	log.Error("gamification state retry budget exhausted",
		slog.String("student_id", payload.StudentID.String()))
	return ErrConcurrentModification
}

// applyEvent runs one read-apply-save cycle against the state row.
func (s *gamificationServiceImpl) applyEvent(ctx context.Context, payload events.InteractionRecordedPayload) error {
	state, err := s.states.Get(ctx, payload.StudentID)
	expectedRevision := int64(0)
	switch {
	case err == nil:
		expectedRevision = state.Revision
	case errors.Is(err, store.ErrGamificationStateNotFound):
		state, err = domain.NewGamificationState(payload.StudentID, payload.OccurredAt)
		if err != nil {
			return NewServiceError("consume_ledger_event", "failed to create state", err)
		}
	default:
		return NewServiceError("consume_ledger_event", "failed to load state", err)
	}

	next := gamification.Apply(state, gamification.Activity{
		Correct:    payload.Correct,
		Difficulty: payload.NodeDifficulty,
		OccurredAt: payload.OccurredAt,
	}, s.params)

	snapshot, err := s.snapshot(ctx, payload.StudentID, next)
	if err != nil {
		return err
	}
	next.Badges = gamification.EvaluateBadges(next.Badges, snapshot)
	next.BossEligibility = gamification.EvaluateBossEligibility(next.BossEligibility, snapshot)

	if err := s.states.Save(ctx, next, expectedRevision); err != nil {
		if errors.Is(err, store.ErrConcurrentModification) {
			return err
		}
		return NewServiceError("consume_ledger_event", "failed to save state", err)
	}
	return nil
}

// snapshot assembles the badge-evaluation view: the full ledger grouped by
// node domain plus the updated XP state.
func (s *gamificationServiceImpl) snapshot(
	ctx context.Context,
	studentID uuid.UUID,
	state *domain.GamificationState,
) (gamification.Snapshot, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	records, err := s.ledger.ListByStudent(ctx, studentID)
	if err != nil {
		return gamification.Snapshot{}, NewServiceError("consume_ledger_event", "failed to read ledger", err)
	}

	byDomain := make(map[string][]*domain.MasteryRecord)
	for _, record := range records {
		node, err := s.nodes.GetNodeByID(ctx, record.NodeID)
		if err != nil {
			if errors.Is(err, store.ErrNodeNotFound) {
				log.Warn("ledger entry references unknown node",
					slog.String("node_id", record.NodeID.String()))
				continue
			}
			return gamification.Snapshot{}, NewServiceError("consume_ledger_event", "failed to load node", err)
		}
		byDomain[node.Domain] = append(byDomain[node.Domain], record)
	}

	return gamification.Snapshot{
		Records: records,
		Nodes:   byDomain,
		XP:      state.XP,
		Level:   gamification.LevelForXP(state.XP, s.params),
		Streak:  state.Streak,
	}, nil
}

// GetStudentGamificationData implements GamificationService.GetStudentGamificationData.
func (s *gamificationServiceImpl) GetStudentGamificationData(
	ctx context.Context,
	studentID uuid.UUID,
) (*GamificationData, error) {
	masteryMap, err := s.masteryMap(ctx, studentID)
	if err != nil {
		return nil, err
	}

	state, err := s.states.Get(ctx, studentID)
	if err != nil {
		if errors.Is(err, store.ErrGamificationStateNotFound) {
			return &GamificationData{
				StudentID:       studentID,
				Level:           1,
				NextLevelXP:     s.nextLevelXP(0),
				Badges:          []string{},
				BossEligibility: []string{},
				MasteryMap:      masteryMap,
			}, nil
		}
		return nil, NewServiceError("get_gamification_data", "failed to load state", err)
	}

	now := s.clock.Now()
	data := &GamificationData{
		StudentID:       state.StudentID,
		XP:              state.XP,
		Level:           gamification.LevelForXP(state.XP, s.params),
		Streak:          gamification.EffectiveStreak(state.Streak, state.LastActivityOn, now),
		NextLevelXP:     s.nextLevelXP(state.XP),
		Badges:          append([]string{}, state.Badges...),
		BossEligibility: append([]string{}, state.BossEligibility...),
		MasteryMap:      masteryMap,
	}
	return data, nil
}

// masteryMap snapshots the student's ledger as a nodeID -> level map for
// the read model.
func (s *gamificationServiceImpl) masteryMap(
	ctx context.Context,
	studentID uuid.UUID,
) (map[uuid.UUID]domain.MasteryLevel, error) {
	records, err := s.ledger.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, NewServiceError("get_gamification_data", "failed to read ledger", err)
	}

	levels := make(map[uuid.UUID]domain.MasteryLevel, len(records))
	for _, record := range records {
		levels[record.NodeID] = record.MasteryLevel
	}
	return levels, nil
}

// nextLevelXP returns the cumulative XP needed for the next level, or 0
// when the top of the table is reached.
func (s *gamificationServiceImpl) nextLevelXP(xp int) int {
	for _, threshold := range s.params.LevelThresholds {
		if xp < threshold {
			return threshold
		}
	}
	return 0
}
