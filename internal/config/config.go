// Package config provides the configuration surface for EduMentor.
// All values have documented defaults and can be overridden through a
// config file or EDUMENTOR_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"edumentor/internal/logger"
)

// Config holds every tunable of the tutoring pipeline.
type Config struct {
	// Generation backend.
	Provider    string  `mapstructure:"provider"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	// MaxTokensPerRequest caps the completion size requested from the
	// generation service.
	MaxTokensPerRequest int `mapstructure:"max_tokens_per_request"`

	// Admission control.
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	RateLimitWindow   time.Duration `mapstructure:"rate_limit_window"`
	SweepInterval     time.Duration `mapstructure:"sweep_interval"`
	DailyTokenCap     int           `mapstructure:"daily_token_cap"`
	MonthlyTokenCap   int           `mapstructure:"monthly_token_cap"`

	// Input guard.
	MaxInputLength int `mapstructure:"max_input_length"`

	// Persona defaults.
	PersonaName     string `mapstructure:"persona_name"`
	PersonaLanguage string `mapstructure:"persona_language"`

	// Streaming and retry behavior.
	ChunkDelay   time.Duration `mapstructure:"chunk_delay"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", "anthropic")
	v.SetDefault("model", "claude-3-5-haiku-latest")
	v.SetDefault("temperature", 0.7)
	v.SetDefault("max_tokens_per_request", 1024)

	v.SetDefault("requests_per_minute", 60)
	v.SetDefault("rate_limit_window", time.Minute)
	v.SetDefault("sweep_interval", 10*time.Second)
	v.SetDefault("daily_token_cap", 100000)
	v.SetDefault("monthly_token_cap", 2000000)

	v.SetDefault("max_input_length", 10000)

	v.SetDefault("persona_name", "Professor Sage")
	v.SetDefault("persona_language", "en")

	v.SetDefault("chunk_delay", 50*time.Millisecond)
	v.SetDefault("max_retries", 2)
	v.SetDefault("retry_backoff", 500*time.Millisecond)
}

// Load reads configuration from the optional config file path and the
// environment. Priority (highest to lowest): environment variables >
// config file > defaults.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("EDUMENTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
		logger.Debug("Config file loaded", "path", configFile)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the built-in configuration without touching the
// filesystem or environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always unmarshal cleanly.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate rejects configurations that would break admission control.
func (c *Config) Validate() error {
	if c.RequestsPerMinute <= 0 {
		return fmt.Errorf("requests_per_minute must be positive, got %d", c.RequestsPerMinute)
	}
	if c.RateLimitWindow <= 0 {
		return fmt.Errorf("rate_limit_window must be positive, got %s", c.RateLimitWindow)
	}
	if c.DailyTokenCap <= 0 {
		return fmt.Errorf("daily_token_cap must be positive, got %d", c.DailyTokenCap)
	}
	if c.MonthlyTokenCap < c.DailyTokenCap {
		return fmt.Errorf("monthly_token_cap %d must be at least daily_token_cap %d", c.MonthlyTokenCap, c.DailyTokenCap)
	}
	if c.MaxInputLength <= 0 {
		return fmt.Errorf("max_input_length must be positive, got %d", c.MaxInputLength)
	}
	return nil
}
