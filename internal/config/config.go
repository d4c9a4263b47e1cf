// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Serial  SerialConfig  `yaml:"serial"`
	Poll    PollConfig    `yaml:"poll"`
	Display DisplayConfig `yaml:"display"`
	Log     LogConfig     `yaml:"log"`
}

// ---- SERIAL ----

type SerialConfig struct {
	Port          string `yaml:"port"` // empty => interactive selection
	Baud          int    `yaml:"baud"`
	ReadTimeoutMs int    `yaml:"read_timeout_ms"`
}

// ---- POLL ----

type PollConfig struct {
	Requests     []string `yaml:"requests"`
	RequestGapMs int      `yaml:"request_gap_ms"`
	SettleMs     int      `yaml:"settle_ms"`
	IntervalMs   int      `yaml:"interval_ms"`
	ReadIdleMs   int      `yaml:"read_idle_ms"`
}

// ---- DISPLAY ----

type DisplayConfig struct {
	Clear *bool `yaml:"clear"` // nil => true
}

// ---- LOG ----

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console | json
	File   string `yaml:"file"`   // empty => stderr
}

// Load reads a YAML config file. An empty path yields an empty config that
// Normalize fills with defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
