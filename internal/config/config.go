// ============================================================================
// Eventphase Configuration
// ============================================================================
//
// Package: internal/config
// File: config.go
// Purpose: YAML configuration loading, grounded on the teacher's
// cmd/demo Config/loadConfig pattern: a nested struct with `yaml`
// tags, a Default() that gives every field a sane zero-config value,
// and a Load(path) that overlays a file's values onto that default.
//
// ============================================================================

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MetricsConfig controls the Prometheus /metrics HTTP endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// LogConfig holds the configured log level. It is loaded and shown by
// `eventctl status`; nothing applies it to a logger.
type LogConfig struct {
	Level string `yaml:"level"`
}

// DispatchConfig holds dispatcher defaults. DefaultPriority is loaded
// and shown by `eventctl status`; neither the dispatcher nor the
// handler builder reads it.
type DispatchConfig struct {
	DefaultPriority string `yaml:"default_priority"`
}

// AsyncSimConfig controls the demo async collaborator used by
// cmd/eventctl's built-in demo handlers.
type AsyncSimConfig struct {
	Workers           int     `yaml:"workers"`
	BufferSize        int     `yaml:"buffer_size"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// Config is the root configuration document.
type Config struct {
	Metrics   MetricsConfig  `yaml:"metrics"`
	Log       LogConfig      `yaml:"log"`
	Dispatch  DispatchConfig `yaml:"dispatch"`
	AsyncSim  AsyncSimConfig `yaml:"asyncsim"`
}

// Default returns a Config usable with no file at all.
func Default() Config {
	return Config{
		Metrics: MetricsConfig{Enabled: true, Port: 9090},
		Log:     LogConfig{Level: "info"},
		Dispatch: DispatchConfig{
			DefaultPriority: "normal",
		},
		AsyncSim: AsyncSimConfig{
			Workers:           4,
			BufferSize:        32,
			RequestsPerSecond: 20,
			Burst:             5,
		},
	}
}

// Load reads path and overlays it onto Default(). A missing file is
// not an error: the caller gets Default() back.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return &cfg, nil
}
