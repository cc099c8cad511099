// Package config defines the sidestep service configuration: a YAML file
// with environment variable overrides, loadable at startup and reloadable
// at runtime.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the root configuration for the sidestep service.
type Config struct {
	App       AppConfig       `yaml:"app"`
	Server    ServerConfig    `yaml:"server"`
	Readiness ReadinessConfig `yaml:"readiness"`
	Chaos     ChaosConfig     `yaml:"chaos"`
	Slow      SlowConfig      `yaml:"slow"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// AppConfig identifies the running application instance.
type AppConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ReadinessConfig controls the simulated external dependency behind /ready.
type ReadinessConfig struct {
	// FailureRate is the probability in [0,1] that a readiness check fails.
	FailureRate float64 `yaml:"failure_rate"`
}

// ChaosConfig controls the /chaos endpoint.
type ChaosConfig struct {
	Enabled bool `yaml:"enabled"`
}

// SlowConfig controls the /slow endpoint.
type SlowConfig struct {
	Delay time.Duration `yaml:"delay"`
}

// TelemetryConfig holds OTLP trace export settings. An empty endpoint
// disables export.
type TelemetryConfig struct {
	Endpoint string            `yaml:"endpoint"`
	Insecure bool              `yaml:"insecure"`
	Headers  map[string]string `yaml:"headers"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default creates a configuration with the built-in defaults.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:        "Sidestep Error Demo",
			Version:     "1.0.0",
			Environment: "dev",
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Readiness: ReadinessConfig{FailureRate: 0.1},
		Chaos:     ChaosConfig{Enabled: false},
		Slow:      SlowConfig{Delay: 2 * time.Second},
		Logging:   LoggingConfig{Level: "info"},
	}
}

// ApplyEnvOverrides applies the 12-factor environment overrides on top of
// the file configuration.
func ApplyEnvOverrides(cfg *Config) {
	if val := os.Getenv("APP_NAME"); val != "" {
		cfg.App.Name = val
	}
	if val := os.Getenv("APP_VERSION"); val != "" {
		cfg.App.Version = val
	}
	if val := os.Getenv("ENVIRONMENT"); val != "" {
		cfg.App.Environment = val
	}
	if val := os.Getenv("CHAOS_MODE"); val != "" {
		cfg.Chaos.Enabled = strings.EqualFold(val, "true")
	}
	if val := os.Getenv("PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.Server.Port = port
		}
	}
	if val := os.Getenv("OTLP_ENDPOINT"); val != "" {
		cfg.Telemetry.Endpoint = val
	}
	if val := os.Getenv("OTLP_INSECURE"); val == "true" {
		cfg.Telemetry.Insecure = true
	}
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
}

// Validate checks the configuration for out-of-range values.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server configuration: port %d out of range", c.Server.Port)
	}
	if c.Readiness.FailureRate < 0 || c.Readiness.FailureRate > 1 {
		return fmt.Errorf("readiness configuration: failure_rate %v outside [0,1]", c.Readiness.FailureRate)
	}
	if c.Slow.Delay < 0 {
		return fmt.Errorf("slow configuration: delay must be non-negative")
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server configuration: shutdown_timeout must be non-negative")
	}
	return nil
}

// ListenAddr returns the address the HTTP server should bind.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
