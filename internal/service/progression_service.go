package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/nexuslearn/nexus-api/internal/domain"
	"github.com/nexuslearn/nexus-api/internal/domain/progression"
	"github.com/nexuslearn/nexus-api/internal/platform/logger"
	"github.com/nexuslearn/nexus-api/internal/store"
)

// TxRunner executes a function within a database transaction. Production
// wiring backs it with store.RunInTransaction; tests substitute a runner
// that calls the function directly.
type TxRunner func(ctx context.Context, fn store.TxFn) error

// BranchStatus pairs a branch edge with its derived state for one student.
type BranchStatus struct {
	Edge  *domain.BranchEdge
	State domain.BranchState
}

// BranchChoiceResult pairs the persisted choice with the node the chosen
// edge leads into, so callers learn where to go next without a second
// lookup.
type BranchChoiceResult struct {
	Choice   *domain.BranchChoice
	NextNode *domain.KnowledgeNode
}

// ProgressionService owns the branch unlock state machine: evaluating
// unlock conditions against the ledger, persisting the transitions, and
// validating choices at decision nodes.
type ProgressionService interface {
	// ChooseBranch records the student's selection of a branch edge and
	// returns the node the edge leads into. A branch that is still locked
	// is re-evaluated first, so a choice immediately after the qualifying
	// interaction does not depend on a separate unlock check having run.
	//
	// Returns ErrBranchNotFound for an unknown edge, ErrBranchNotAvailable
	// when the unlock condition is not met or the edge dangles into a
	// retired node, and ErrBranchAlreadyChosen when a different sibling
	// was chosen at an exclusive decision node.
	ChooseBranch(ctx context.Context, studentID, branchID uuid.UUID) (*BranchChoiceResult, error)

	// CheckBranchUnlock re-evaluates every locked branch for the student
	// and persists any LOCKED -> AVAILABLE transitions. It returns only
	// the branches that became available in this call, which makes it
	// idempotent: a second call with no ledger change returns nothing.
	CheckBranchUnlock(ctx context.Context, studentID uuid.UUID) ([]*domain.BranchEdge, error)

	// ListBranchStatuses derives the current state of every branch edge
	// for the student.
	ListBranchStatuses(ctx context.Context, studentID uuid.UUID) ([]BranchStatus, error)
}

// Verify interface compliance at compile time
var (
	_ ProgressionService = (*progressionServiceImpl)(nil)
	_ UnlockChecker      = (*progressionServiceImpl)(nil)
)

type progressionServiceImpl struct {
	nodes    store.KnowledgeGraphStore
	ledger   store.MasteryStore
	branches store.BranchStore
	runTx    TxRunner
	clock    Clock
	logger   *slog.Logger
}

// NewProgressionService creates the branch progression service. A nil
// runTx executes choice writes without an enclosing transaction.
func NewProgressionService(
	nodes store.KnowledgeGraphStore,
	ledger store.MasteryStore,
	branches store.BranchStore,
	runTx TxRunner,
	clock Clock,
	log *slog.Logger,
) ProgressionService {
	if nodes == nil {
		panic("nodes cannot be nil")
	}
	if ledger == nil {
		panic("ledger cannot be nil")
	}
	if branches == nil {
		panic("branches cannot be nil")
	}

	if clock == nil {
		clock = NewSystemClock()
	}
	if log == nil {
		log = slog.Default()
	}

	return &progressionServiceImpl{
		nodes:    nodes,
		ledger:   ledger,
		branches: branches,
		runTx:    runTx,
		clock:    clock,
		logger:   log.With(slog.String("component", "progression_service")),
	}
}

// ChooseBranch implements ProgressionService.ChooseBranch.
func (s *progressionServiceImpl) ChooseBranch(
	ctx context.Context,
	studentID, branchID uuid.UUID,
) (*BranchChoiceResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.clock.Now()

	edge, err := s.nodes.GetBranchEdge(ctx, branchID)
	if err != nil {
		if errors.Is(err, store.ErrBranchNotFound) {
			return nil, ErrBranchNotFound
		}
		return nil, NewServiceError("choose_branch", "failed to load branch edge", err)
	}

	fromNode, err := s.nodes.GetNodeByID(ctx, edge.FromNodeID)
	if err != nil {
		return nil, NewServiceError("choose_branch", "failed to load decision node", err)
	}

	// A dangling edge is never choosable, matching the unlock check's
	// treatment of edges into retired nodes.
	nextNode, err := s.nodes.GetNodeByID(ctx, edge.ToNodeID)
	if err != nil {
		if errors.Is(err, store.ErrNodeNotFound) {
			log.Warn("branch edge references unknown target node",
				slog.String("branch_id", branchID.String()))
			return nil, ErrBranchNotAvailable
		}
		return nil, NewServiceError("choose_branch", "failed to load target node", err)
	}

	unlocked, chosen, choices, err := s.progressSets(ctx, studentID)
	if err != nil {
		return nil, err
	}

	state := progression.StateFor(branchID, unlocked, chosen)
	needUnlock := false
	if state == domain.BranchLocked {
		// The qualifying interaction may have just landed; evaluate the
		// condition directly instead of trusting the persisted set.
		met, err := s.conditionMet(ctx, studentID, edge, nextNode)
		if err != nil {
			return nil, err
		}
		if !met {
			log.Warn("branch choice rejected, condition not met",
				slog.String("student_id", studentID.String()),
				slog.String("branch_id", branchID.String()))
			return nil, ErrBranchNotAvailable
		}
		state = domain.BranchAvailable
		needUnlock = true
	}

	if fromNode.ExclusiveChoice {
		for _, choice := range choices {
			if choice.FromNodeID == edge.FromNodeID && choice.BranchID != branchID {
				log.Warn("branch choice rejected, exclusive sibling already chosen",
					slog.String("student_id", studentID.String()),
					slog.String("branch_id", branchID.String()),
					slog.String("chosen_branch_id", choice.BranchID.String()))
				return nil, ErrBranchAlreadyChosen
			}
		}
	}

	if _, err := progression.Next(state, progression.EventChoose); err != nil {
		return nil, NewServiceError("choose_branch", "invalid branch transition", err)
	}

	choice, err := domain.NewBranchChoice(studentID, edge, now)
	if err != nil {
		return nil, NewServiceError("choose_branch", "failed to build choice", err)
	}

	write := func(ctx context.Context, branches store.BranchStore) error {
		if needUnlock {
			unlock, err := domain.NewBranchUnlock(studentID, branchID, now)
			if err != nil {
				return err
			}
			if err := branches.CreateUnlock(ctx, unlock); err != nil && !errors.Is(err, store.ErrDuplicate) {
				return err
			}
		}
		return branches.CreateChoice(ctx, choice)
	}

	if s.runTx != nil {
		err = s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
			return write(ctx, s.branches.WithTx(tx))
		})
	} else {
		err = write(ctx, s.branches)
	}
	if err != nil {
		return nil, NewServiceError("choose_branch", "failed to record choice", err)
	}

	log.Info("branch chosen",
		slog.String("student_id", studentID.String()),
		slog.String("branch_id", branchID.String()),
		slog.String("from_node_id", edge.FromNodeID.String()),
		slog.String("to_node_id", edge.ToNodeID.String()))

	return &BranchChoiceResult{Choice: choice, NextNode: nextNode}, nil
}

// CheckBranchUnlock implements ProgressionService.CheckBranchUnlock.
func (s *progressionServiceImpl) CheckBranchUnlock(
	ctx context.Context,
	studentID uuid.UUID,
) ([]*domain.BranchEdge, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.clock.Now()

	edges, err := s.nodes.ListBranchEdges(ctx)
	if err != nil {
		return nil, NewServiceError("check_branch_unlock", "failed to list branch edges", err)
	}

	unlocked, _, _, err := s.progressSets(ctx, studentID)
	if err != nil {
		return nil, err
	}

	levels, err := s.masteryLevels(ctx, studentID)
	if err != nil {
		return nil, err
	}

	var newlyAvailable []*domain.BranchEdge
	for _, edge := range edges {
		if unlocked[edge.ID] {
			continue
		}

		target, err := s.nodes.GetNodeByID(ctx, edge.ToNodeID)
		if err != nil {
			if errors.Is(err, store.ErrNodeNotFound) {
				log.Warn("branch edge references unknown target node",
					slog.String("branch_id", edge.ID.String()))
				continue
			}
			return nil, NewServiceError("check_branch_unlock", "failed to load target node", err)
		}

		if !progression.ConditionMet(edge, target, levels) {
			continue
		}

		unlock, err := domain.NewBranchUnlock(studentID, edge.ID, now)
		if err != nil {
			return nil, NewServiceError("check_branch_unlock", "failed to build unlock", err)
		}
		if err := s.branches.CreateUnlock(ctx, unlock); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				// A concurrent check got there first; the branch is not
				// newly available from this caller's perspective.
				continue
			}
			return nil, NewServiceError("check_branch_unlock", "failed to record unlock", err)
		}
		newlyAvailable = append(newlyAvailable, edge)
	}

	if len(newlyAvailable) > 0 {
		log.Info("branches unlocked",
			slog.String("student_id", studentID.String()),
			slog.Int("count", len(newlyAvailable)))
	}

	return newlyAvailable, nil
}

// ListBranchStatuses implements ProgressionService.ListBranchStatuses.
func (s *progressionServiceImpl) ListBranchStatuses(
	ctx context.Context,
	studentID uuid.UUID,
) ([]BranchStatus, error) {
	edges, err := s.nodes.ListBranchEdges(ctx)
	if err != nil {
		return nil, NewServiceError("list_branch_statuses", "failed to list branch edges", err)
	}

	unlocked, chosen, _, err := s.progressSets(ctx, studentID)
	if err != nil {
		return nil, err
	}

	statuses := make([]BranchStatus, 0, len(edges))
	for _, edge := range edges {
		statuses = append(statuses, BranchStatus{
			Edge:  edge,
			State: progression.StateFor(edge.ID, unlocked, chosen),
		})
	}
	return statuses, nil
}

// progressSets loads the persisted unlock and choice sets for a student.
func (s *progressionServiceImpl) progressSets(
	ctx context.Context,
	studentID uuid.UUID,
) (unlocked, chosen map[uuid.UUID]bool, choices []*domain.BranchChoice, err error) {
	unlocks, err := s.branches.ListUnlocks(ctx, studentID)
	if err != nil {
		return nil, nil, nil, NewServiceError("branch_progress", "failed to list unlocks", err)
	}
	choices, err = s.branches.ListChoices(ctx, studentID)
	if err != nil {
		return nil, nil, nil, NewServiceError("branch_progress", "failed to list choices", err)
	}

	unlocked = make(map[uuid.UUID]bool, len(unlocks))
	for _, u := range unlocks {
		unlocked[u.BranchID] = true
	}
	chosen = make(map[uuid.UUID]bool, len(choices))
	for _, c := range choices {
		chosen[c.BranchID] = true
	}
	return unlocked, chosen, choices, nil
}

// masteryLevels snapshots the student's ledger as a nodeID -> level map.
func (s *progressionServiceImpl) masteryLevels(
	ctx context.Context,
	studentID uuid.UUID,
) (map[uuid.UUID]domain.MasteryLevel, error) {
	records, err := s.ledger.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, NewServiceError("branch_progress", "failed to read ledger", err)
	}

	levels := make(map[uuid.UUID]domain.MasteryLevel, len(records))
	for _, record := range records {
		levels[record.NodeID] = record.MasteryLevel
	}
	return levels, nil
}

// conditionMet evaluates one edge's unlock condition against the current
// ledger.
func (s *progressionServiceImpl) conditionMet(
	ctx context.Context,
	studentID uuid.UUID,
	edge *domain.BranchEdge,
	target *domain.KnowledgeNode,
) (bool, error) {
	levels, err := s.masteryLevels(ctx, studentID)
	if err != nil {
		return false, err
	}
	return progression.ConditionMet(edge, target, levels), nil
}
