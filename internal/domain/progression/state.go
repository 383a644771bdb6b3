// Package progression implements the branch unlock state machine over the
// knowledge graph's alternative-path edges.
//
// Each (student, branch) pair moves LOCKED -> AVAILABLE -> CHOSEN through
// an explicit transition table. Unlock evaluation is a pure function over
// a mastery snapshot; persisting the transitions (and hence idempotence)
// is the progression service's job.
package progression

import (
	"errors"

	"github.com/google/uuid"

	"github.com/nexuslearn/nexus-api/internal/domain"
)

// Event is a transition trigger in the branch state machine.
type Event string

// Possible transition events.
const (
	// EventUnlock fires when the branch's unlock condition is met.
	EventUnlock Event = "unlock"
	// EventChoose fires when the student selects the branch.
	EventChoose Event = "choose"
)

// Common transition errors
var (
	ErrInvalidTransition = errors.New("invalid branch state transition")
	ErrUnknownState      = errors.New("unknown branch state")
	ErrUnknownEvent      = errors.New("unknown branch event")
)

// transitions is the closed transition table. Anything absent here is an
// invalid transition.
var transitions = map[domain.BranchState]map[Event]domain.BranchState{
	domain.BranchLocked: {
		EventUnlock: domain.BranchAvailable,
	},
	domain.BranchAvailable: {
		EventChoose: domain.BranchChosen,
	},
	domain.BranchChosen: {
		// Re-choosing a non-exclusive branch is permitted; the choice
		// ledger appends a new row and the state stays CHOSEN.
		EventChoose: domain.BranchChosen,
	},
}

// Next applies an event to a state through the transition table.
func Next(state domain.BranchState, event Event) (domain.BranchState, error) {
	byEvent, ok := transitions[state]
	if !ok {
		return "", ErrUnknownState
	}

	switch event {
	case EventUnlock, EventChoose:
	default:
		return "", ErrUnknownEvent
	}

	next, ok := byEvent[event]
	if !ok {
		return "", ErrInvalidTransition
	}
	return next, nil
}

// RequiredNodes resolves the node set an unlock condition gates on: the
// condition's explicit list, or the target node's prerequisites when the
// list is empty.
func RequiredNodes(edge *domain.BranchEdge, target *domain.KnowledgeNode) []uuid.UUID {
	if len(edge.Condition.RequiredNodeIDs) > 0 {
		return edge.Condition.RequiredNodeIDs
	}
	if target == nil {
		return nil
	}
	return target.Prerequisites
}

// MinLevel resolves the mastery threshold an unlock condition gates on,
// defaulting to PROFICIENT when the condition leaves it unset.
func MinLevel(edge *domain.BranchEdge) domain.MasteryLevel {
	if edge.Condition.MinLevel.IsValid() {
		return edge.Condition.MinLevel
	}
	return domain.MasteryProficient
}

// ConditionMet reports whether every required node holds at least the
// condition's mastery threshold in the given snapshot. A branch with no
// required nodes is unconditionally unlockable.
func ConditionMet(
	edge *domain.BranchEdge,
	target *domain.KnowledgeNode,
	levels map[uuid.UUID]domain.MasteryLevel,
) bool {
	minLevel := MinLevel(edge)
	for _, nodeID := range RequiredNodes(edge, target) {
		level, ok := levels[nodeID]
		if !ok || !level.AtLeast(minLevel) {
			return false
		}
	}
	return true
}

// StateFor derives the current state of a branch for a student from the
// persisted unlock and choice sets.
func StateFor(branchID uuid.UUID, unlocked map[uuid.UUID]bool, chosen map[uuid.UUID]bool) domain.BranchState {
	switch {
	case chosen[branchID]:
		return domain.BranchChosen
	case unlocked[branchID]:
		return domain.BranchAvailable
	default:
		return domain.BranchLocked
	}
}
