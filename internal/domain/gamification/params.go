package gamification

// Params defines all configurable parameters for XP, levels and streaks.
type Params struct {
	// BaseXP is the award for a correct interaction on a difficulty-1
	// node before multipliers.
	BaseXP int

	// StreakStep is the additional multiplier earned per consecutive
	// correct answer beyond the first.
	StreakStep float64

	// MaxMultiplier caps the accuracy-streak multiplier.
	MaxMultiplier float64

	// LevelThresholds is the cumulative XP required to hold each level.
	// LevelThresholds[0] is level 1 (always 0). The table is strictly
	// increasing, which makes the derived level monotonic in XP.
	LevelThresholds []int
}

// ParamsConfig allows overriding the default parameters when creating a
// new Params instance. Zero values keep the default.
type ParamsConfig struct {
	BaseXP          int
	StreakStep      float64
	MaxMultiplier   float64
	LevelThresholds []int
}

// defaultLevelThresholds covers levels 1-20. Past the end of the table the
// level stays pinned at the top.
var defaultLevelThresholds = []int{
	0, 100, 250, 450, 700,
	1000, 1400, 1900, 2500, 3200,
	4000, 5000, 6200, 7600, 9200,
	11000, 13000, 15200, 17600, 20200,
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		BaseXP:          10,
		StreakStep:      0.25,
		MaxMultiplier:   3.0,
		LevelThresholds: defaultLevelThresholds,
	}
}

// NewParams creates a new Params instance with custom configuration.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.BaseXP > 0 {
		params.BaseXP = config.BaseXP
	}
	if config.StreakStep > 0 {
		params.StreakStep = config.StreakStep
	}
	if config.MaxMultiplier > 1 {
		params.MaxMultiplier = config.MaxMultiplier
	}
	if len(config.LevelThresholds) > 0 {
		params.LevelThresholds = config.LevelThresholds
	}

	return params
}
