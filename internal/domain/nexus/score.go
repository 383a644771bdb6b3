// Package nexus computes the composite 0-100 confidence score for a
// student on a knowledge node.
//
// The score blends three components: exponentially recency-weighted
// accuracy, a confidence component built from hint usage and latency
// stability, and a fit component that penalizes out-of-level or
// out-of-domain nodes. It is a pure read over a ledger snapshot:
// recomputing from the same snapshot always yields the same score.
package nexus

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/nexuslearn/nexus-api/internal/domain"
)

// Components breaks the composite score into its three 0-100 parts.
type Components struct {
	Accuracy   float64 `json:"accuracy"`
	Confidence float64 `json:"confidence"`
	Fit        float64 `json:"fit"`
}

// Score is the nexus score for one (student, node) pair. It is derived,
// never persisted: the mastery ledger remains the source of truth.
type Score struct {
	NodeID        uuid.UUID  `json:"node_id"`
	NodeCode      string     `json:"node_code"`
	Score         float64    `json:"score"`
	Components    Components `json:"components"`
	TrulyMastered bool       `json:"truly_mastered"`
	// LastInteractionAt breaks ordering ties between equal scores.
	LastInteractionAt time.Time `json:"last_interaction_at"`
}

// accuracyComponent computes recency-weighted correctness over the full
// history, newest first. The weight of an interaction halves every
// RecencyHalfLife interactions, so recent answers dominate.
func accuracyComponent(history []domain.Interaction, params *Params) float64 {
	if len(history) == 0 {
		return 0
	}

	decay := math.Ln2 / params.RecencyHalfLife
	var weighted, total float64
	for i := range history {
		// i counts backwards from the newest interaction.
		age := float64(len(history) - 1 - i)
		w := math.Exp(-decay * age)
		weighted += w * history[i].Correctness
		total += w
	}

	return clamp(100 * weighted / total)
}

// confidenceComponent starts from 100 and deducts for hint reliance and
// latency instability. Stable, unhinted, fast-but-not-rushed answering
// keeps the component high.
func confidenceComponent(history []domain.Interaction, params *Params) float64 {
	if len(history) == 0 {
		return 0
	}

	var hinted int
	var latencySum float64
	for i := range history {
		if history[i].Hinted() {
			hinted++
		}
		latencySum += float64(history[i].LatencyMs)
	}

	hintRate := float64(hinted) / float64(len(history))
	penalty := params.HintPenaltyScale * hintRate

	mean := latencySum / float64(len(history))
	if mean > 0 && len(history) > 1 {
		var variance float64
		for i := range history {
			d := float64(history[i].LatencyMs) - mean
			variance += d * d
		}
		variance /= float64(len(history))
		cv := math.Sqrt(variance) / mean
		if cv > 1 {
			cv = 1
		}
		penalty += params.LatencyPenaltyScale * cv
	}

	return clamp(100 - penalty)
}

// fitComponent penalizes the mismatch between the node's grade level and
// domain and the student's current grade and focus. The total penalty is
// capped so an off-track node is dampened, not zeroed.
func fitComponent(node *domain.KnowledgeNode, gradeLevel int, domainFocus string, params *Params) float64 {
	gradeDistance := float64(node.GradeLevel - gradeLevel)
	if gradeDistance < 0 {
		gradeDistance = -gradeDistance
	}

	penalty := params.GradePenaltyPerLevel * gradeDistance
	if domainFocus != "" && node.Domain != domainFocus {
		penalty += params.DomainMismatchPenalty
	}
	if penalty > params.MaxFitPenalty {
		penalty = params.MaxFitPenalty
	}

	return clamp(100 - penalty)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Calculate computes the composite score for a record and its node. The
// record may be nil for a node the student has never practiced: accuracy
// and confidence are zero but fit is still meaningful.
func Calculate(
	record *domain.MasteryRecord,
	node *domain.KnowledgeNode,
	gradeLevel int,
	domainFocus string,
	params *Params,
) Score {
	score := Score{
		NodeID:   node.ID,
		NodeCode: node.Code,
	}

	score.Components.Fit = fitComponent(node, gradeLevel, domainFocus, params)

	if record != nil {
		score.Components.Accuracy = accuracyComponent(record.History, params)
		score.Components.Confidence = confidenceComponent(record.History, params)
		score.TrulyMastered = record.TrulyMastered
		score.LastInteractionAt = record.LastInteractionAt()
	}

	composite := params.AccuracyWeight*score.Components.Accuracy +
		params.ConfidenceWeight*score.Components.Confidence +
		params.FitWeight*score.Components.Fit
	score.Score = math.Round(composite*100) / 100

	return score
}
