package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "Sidestep Error Demo", cfg.App.Name)
	assert.Equal(t, "1.0.0", cfg.App.Version)
	assert.Equal(t, "dev", cfg.App.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.ListenAddr())
	assert.InDelta(t, 0.1, cfg.Readiness.FailureRate, 1e-9)
	assert.False(t, cfg.Chaos.Enabled)
	assert.Equal(t, 2*time.Second, cfg.Slow.Delay)

	require.NoError(t, cfg.Validate())
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("APP_NAME", "renamed")
	t.Setenv("APP_VERSION", "2.3.4")
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("CHAOS_MODE", "TRUE")
	t.Setenv("PORT", "9090")

	cfg := Default()
	ApplyEnvOverrides(cfg)

	assert.Equal(t, "renamed", cfg.App.Name)
	assert.Equal(t, "2.3.4", cfg.App.Version)
	assert.Equal(t, "prod", cfg.App.Environment)
	assert.True(t, cfg.Chaos.Enabled)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestApplyEnvOverrides_InvalidPortIgnored(t *testing.T) {
	t.Setenv("PORT", "not-a-port")

	cfg := Default()
	ApplyEnvOverrides(cfg)

	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "port",
		},
		{
			name:    "failure rate above one",
			mutate:  func(c *Config) { c.Readiness.FailureRate = 1.5 },
			wantErr: "failure_rate",
		},
		{
			name:    "negative failure rate",
			mutate:  func(c *Config) { c.Readiness.FailureRate = -0.2 },
			wantErr: "failure_rate",
		},
		{
			name:    "negative slow delay",
			mutate:  func(c *Config) { c.Slow.Delay = -time.Second },
			wantErr: "delay",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
