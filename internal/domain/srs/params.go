package srs

// Params defines all configurable parameters for the review scheduling
// algorithm. The curve is a simple exponential backoff: it only
// distinguishes passed from failed reviews, not graded recall quality.
type Params struct {
	// BaseIntervalDays is the interval assigned when a node first reaches
	// MASTERED, and the interval a failed review resets to.
	BaseIntervalDays int

	// GrowthFactor multiplies the interval after each passed review.
	GrowthFactor float64

	// MaxIntervalDays caps interval growth.
	MaxIntervalDays int
}

// ParamsConfig allows overriding the default parameters when creating a
// new Params instance. Zero values keep the default.
type ParamsConfig struct {
	BaseIntervalDays int
	GrowthFactor     float64
	MaxIntervalDays  int
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		BaseIntervalDays: 1,
		GrowthFactor:     2.0,
		MaxIntervalDays:  60,
	}
}

// NewParams creates a new Params instance with custom configuration.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.BaseIntervalDays > 0 {
		params.BaseIntervalDays = config.BaseIntervalDays
	}
	if config.GrowthFactor > 1 {
		params.GrowthFactor = config.GrowthFactor
	}
	if config.MaxIntervalDays > 0 {
		params.MaxIntervalDays = config.MaxIntervalDays
	}

	return params
}
