package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load configuration from environment variables and optionally a config file.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Optional config.yaml in the working directory; env vars still win.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("NEXUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every config key with viper. Keys without a useful
// default are set to the zero value so AutomaticEnv can find them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.url", "")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_lifetime_hours", 24)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("engine.mastery_window_size", 5)
	v.SetDefault("engine.correct_threshold", 0.6)
	v.SetDefault("engine.advance_ratio", 0.8)
	v.SetDefault("engine.regress_ratio", 0.6)
	v.SetDefault("engine.max_hinted_for_advance", 1)
	v.SetDefault("engine.srs_base_interval_days", 1)
	v.SetDefault("engine.srs_growth_factor", 2.0)
	v.SetDefault("engine.srs_max_interval_days", 60)
	v.SetDefault("engine.write_retry_limit", 3)

	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.model_name", "gemini-2.0-flash")
}
