package nexus

// Params defines all configurable parameters for the nexus score
// composite. Component weights must stay in [0, 1] and sum to 1; the
// defaults are 50/30/20 accuracy/confidence/fit.
type Params struct {
	// AccuracyWeight, ConfidenceWeight and FitWeight blend the three
	// components into the composite score.
	AccuracyWeight   float64
	ConfidenceWeight float64
	FitWeight        float64

	// RecencyHalfLife is the number of interactions over which an
	// interaction's weight in the accuracy component halves.
	RecencyHalfLife float64

	// CorrectThreshold mirrors the mastery window's notion of a correct
	// answer; partial credit above it counts fully toward accuracy decay
	// weighting boundaries.
	CorrectThreshold float64

	// HintPenaltyScale converts the hint-usage rate into a confidence
	// deduction (a rate of 1.0 deducts the full scale).
	HintPenaltyScale float64

	// LatencyPenaltyScale converts latency instability (coefficient of
	// variation, clamped to 1) into a confidence deduction.
	LatencyPenaltyScale float64

	// GradePenaltyPerLevel is the fit deduction per grade level of
	// distance between node and student.
	GradePenaltyPerLevel float64

	// DomainMismatchPenalty is the fit deduction when the node's domain
	// differs from the student's focus.
	DomainMismatchPenalty float64

	// MaxFitPenalty caps the total fit deduction.
	MaxFitPenalty float64
}

// ParamsConfig allows overriding the default parameters when creating a
// new Params instance. Zero values keep the default.
type ParamsConfig struct {
	AccuracyWeight        float64
	ConfidenceWeight      float64
	FitWeight             float64
	RecencyHalfLife       float64
	HintPenaltyScale      float64
	LatencyPenaltyScale   float64
	GradePenaltyPerLevel  float64
	DomainMismatchPenalty float64
	MaxFitPenalty         float64
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		AccuracyWeight:        0.5,
		ConfidenceWeight:      0.3,
		FitWeight:             0.2,
		RecencyHalfLife:       3,
		CorrectThreshold:      0.6,
		HintPenaltyScale:      60,
		LatencyPenaltyScale:   40,
		GradePenaltyPerLevel:  10,
		DomainMismatchPenalty: 10,
		MaxFitPenalty:         20,
	}
}

// NewParams creates a new Params instance with custom configuration.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.AccuracyWeight > 0 {
		params.AccuracyWeight = config.AccuracyWeight
	}
	if config.ConfidenceWeight > 0 {
		params.ConfidenceWeight = config.ConfidenceWeight
	}
	if config.FitWeight > 0 {
		params.FitWeight = config.FitWeight
	}
	if config.RecencyHalfLife > 0 {
		params.RecencyHalfLife = config.RecencyHalfLife
	}
	if config.HintPenaltyScale > 0 {
		params.HintPenaltyScale = config.HintPenaltyScale
	}
	if config.LatencyPenaltyScale > 0 {
		params.LatencyPenaltyScale = config.LatencyPenaltyScale
	}
	if config.GradePenaltyPerLevel > 0 {
		params.GradePenaltyPerLevel = config.GradePenaltyPerLevel
	}
	if config.DomainMismatchPenalty > 0 {
		params.DomainMismatchPenalty = config.DomainMismatchPenalty
	}
	if config.MaxFitPenalty > 0 {
		params.MaxFitPenalty = config.MaxFitPenalty
	}

	return params
}
