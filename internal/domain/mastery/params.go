package mastery

// Params defines all configurable parameters for the fixed-window mastery
// evaluation. Defaults follow the platform's tuning; every value can be
// overridden from configuration.
type Params struct {
	// WindowSize is the number of most recent interactions evaluated on
	// every ledger append (K).
	WindowSize int

	// CorrectThreshold is the minimum partial-credit fraction for an
	// interaction to count as correct.
	CorrectThreshold float64

	// AdvanceRatio is the share of the window that must be correct for
	// the mastery level to advance one stage.
	AdvanceRatio float64

	// RegressRatio is the share of the window that must be incorrect for
	// the mastery level to regress one stage.
	RegressRatio float64

	// MaxHintedForAdvance is the maximum number of hinted answers allowed
	// in the window for an advance to still count.
	MaxHintedForAdvance int
}

// ParamsConfig allows overriding the default parameters when creating a
// new Params instance. Zero values keep the default.
type ParamsConfig struct {
	WindowSize          int
	CorrectThreshold    float64
	AdvanceRatio        float64
	RegressRatio        float64
	MaxHintedForAdvance int
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		WindowSize:          5,
		CorrectThreshold:    0.6,
		AdvanceRatio:        0.8,
		RegressRatio:        0.6,
		MaxHintedForAdvance: 1,
	}
}

// NewParams creates a new Params instance with custom configuration.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.WindowSize > 0 {
		params.WindowSize = config.WindowSize
	}
	if config.CorrectThreshold > 0 {
		params.CorrectThreshold = config.CorrectThreshold
	}
	if config.AdvanceRatio > 0 {
		params.AdvanceRatio = config.AdvanceRatio
	}
	if config.RegressRatio > 0 {
		params.RegressRatio = config.RegressRatio
	}
	if config.MaxHintedForAdvance > 0 {
		params.MaxHintedForAdvance = config.MaxHintedForAdvance
	}

	return params
}
