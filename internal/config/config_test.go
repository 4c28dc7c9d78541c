package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, 60, cfg.RequestsPerMinute)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 100000, cfg.DailyTokenCap)
	assert.Equal(t, 2000000, cfg.MonthlyTokenCap)
	assert.Equal(t, 10000, cfg.MaxInputLength)
	assert.Equal(t, "Professor Sage", cfg.PersonaName)
	require.NoError(t, cfg.Validate())
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "provider: openai\nmodel: gpt-4o-mini\ndaily_token_cap: 5000\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, 5000, cfg.DailyTokenCap)
	assert.Equal(t, 60, cfg.RequestsPerMinute, "unset keys keep defaults")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("provider: openai\n"), 0o644))
	t.Setenv("EDUMENTOR_PROVIDER", "gemini")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.Provider)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero requests per minute", func(c *Config) { c.RequestsPerMinute = 0 }},
		{"zero window", func(c *Config) { c.RateLimitWindow = 0 }},
		{"zero daily cap", func(c *Config) { c.DailyTokenCap = 0 }},
		{"monthly below daily", func(c *Config) { c.MonthlyTokenCap = c.DailyTokenCap - 1 }},
		{"zero input length", func(c *Config) { c.MaxInputLength = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
