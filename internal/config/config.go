package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Engine   EngineConfig   `mapstructure:"engine" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret          string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeHours int    `mapstructure:"token_lifetime_hours" validate:"required,gt=0"`
	BcryptCost         int    `mapstructure:"bcrypt_cost" validate:"required,gte=4,lte=31"`
}

// EngineConfig contains the tunable parameters of the learning engine.
// Defaults are applied by Load; overriding them changes how quickly
// students advance, regress, and come back up for review.
type EngineConfig struct {
	MasteryWindowSize   int     `mapstructure:"mastery_window_size" validate:"required,gt=0"`
	CorrectThreshold    float64 `mapstructure:"correct_threshold" validate:"required,gt=0,lte=1"`
	AdvanceRatio        float64 `mapstructure:"advance_ratio" validate:"required,gt=0,lte=1"`
	RegressRatio        float64 `mapstructure:"regress_ratio" validate:"required,gt=0,lte=1"`
	MaxHintedForAdvance int     `mapstructure:"max_hinted_for_advance" validate:"gte=0"`

	SRSBaseIntervalDays int     `mapstructure:"srs_base_interval_days" validate:"required,gt=0"`
	SRSGrowthFactor     float64 `mapstructure:"srs_growth_factor" validate:"required,gt=1"`
	SRSMaxIntervalDays  int     `mapstructure:"srs_max_interval_days" validate:"required,gt=0"`

	WriteRetryLimit int `mapstructure:"write_retry_limit" validate:"required,gt=0"`
}

// LLMConfig contains all LLM integration related settings. The lesson plan
// generator is disabled when no API key is configured.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	ModelName    string `mapstructure:"model_name"`
}
