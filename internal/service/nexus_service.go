package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/nexuslearn/nexus-api/internal/domain/nexus"
	"github.com/nexuslearn/nexus-api/internal/platform/logger"
	"github.com/nexuslearn/nexus-api/internal/store"
)

// NexusService projects nexus scores from the mastery ledger. Scores are
// computed on read and never persisted; nothing downstream gates on them.
type NexusService interface {
	// CalculateNexusScore computes the score for one student-node pair.
	// A node the student has never practiced still gets a score; its
	// accuracy and confidence components are simply zero.
	// Returns ErrStudentNotFound or ErrNodeNotFound for unknown IDs.
	CalculateNexusScore(ctx context.Context, studentID, nodeID uuid.UUID) (*nexus.Score, error)

	// GetAllNexusScores computes scores for every node the student has
	// interacted with, ordered by descending score. Ties break toward the
	// more recently practiced node, then by node code for stability.
	// Returns ErrStudentNotFound for an unknown student.
	GetAllNexusScores(ctx context.Context, studentID uuid.UUID) ([]nexus.Score, error)
}

// Verify interface compliance at compile time
var _ NexusService = (*nexusServiceImpl)(nil)

type nexusServiceImpl struct {
	students store.StudentRegistry
	nodes    store.KnowledgeGraphStore
	ledger   store.MasteryStore
	params   *nexus.Params
	logger   *slog.Logger
}

// NewNexusService creates the score projection service. A nil params falls
// back to the default weighting.
func NewNexusService(
	students store.StudentRegistry,
	nodes store.KnowledgeGraphStore,
	ledger store.MasteryStore,
	params *nexus.Params,
	log *slog.Logger,
) NexusService {
	if students == nil {
		panic("students cannot be nil")
	}
	if nodes == nil {
		panic("nodes cannot be nil")
	}
	if ledger == nil {
		panic("ledger cannot be nil")
	}

	if params == nil {
		params = nexus.NewDefaultParams()
	}
	if log == nil {
		log = slog.Default()
	}

	return &nexusServiceImpl{
		students: students,
		nodes:    nodes,
		ledger:   ledger,
		params:   params,
		logger:   log.With(slog.String("component", "nexus_service")),
	}
}

// CalculateNexusScore implements NexusService.CalculateNexusScore.
func (s *nexusServiceImpl) CalculateNexusScore(
	ctx context.Context,
	studentID, nodeID uuid.UUID,
) (*nexus.Score, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, store.ErrStudentNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, NewServiceError("calculate_nexus_score", "failed to load student", err)
	}

	node, err := s.nodes.GetNodeByID(ctx, nodeID)
	if err != nil {
		if errors.Is(err, store.ErrNodeNotFound) {
			return nil, ErrNodeNotFound
		}
		return nil, NewServiceError("calculate_nexus_score", "failed to load knowledge node", err)
	}

	record, err := s.ledger.Get(ctx, studentID, nodeID)
	if err != nil {
		if !errors.Is(err, store.ErrMasteryRecordNotFound) {
			return nil, NewServiceError("calculate_nexus_score", "failed to read ledger", err)
		}
		record = nil // never practiced; fit still applies
	}

	score := nexus.Calculate(record, node, student.GradeLevel, student.DomainFocus, s.params)

	log.Debug("nexus score calculated",
		slog.String("student_id", studentID.String()),
		slog.String("node_id", nodeID.String()),
		slog.Float64("score", score.Score))

	return &score, nil
}

// GetAllNexusScores implements NexusService.GetAllNexusScores.
func (s *nexusServiceImpl) GetAllNexusScores(
	ctx context.Context,
	studentID uuid.UUID,
) ([]nexus.Score, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, store.ErrStudentNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, NewServiceError("get_all_nexus_scores", "failed to load student", err)
	}

	records, err := s.ledger.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, NewServiceError("get_all_nexus_scores", "failed to read ledger", err)
	}

	scores := make([]nexus.Score, 0, len(records))
	for _, record := range records {
		node, err := s.nodes.GetNodeByID(ctx, record.NodeID)
		if err != nil {
			if errors.Is(err, store.ErrNodeNotFound) {
				// A ledger entry for a retired node is not the caller's
				// problem; skip it rather than fail the whole listing.
				log.Warn("ledger entry references unknown node",
					slog.String("student_id", studentID.String()),
					slog.String("node_id", record.NodeID.String()))
				continue
			}
			return nil, NewServiceError("get_all_nexus_scores", "failed to load knowledge node", err)
		}
		scores = append(scores, nexus.Calculate(record, node, student.GradeLevel, student.DomainFocus, s.params))
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		if !scores[i].LastInteractionAt.Equal(scores[j].LastInteractionAt) {
			return scores[i].LastInteractionAt.After(scores[j].LastInteractionAt)
		}
		return scores[i].NodeCode < scores[j].NodeCode
	})

	log.Debug("nexus scores listed",
		slog.String("student_id", studentID.String()),
		slog.Int("count", len(scores)))

	return scores, nil
}
