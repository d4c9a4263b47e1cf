// internal/config/validate.go
package config

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jonamat/go-ninebot-bms/pkg/bms"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if cfg.Serial.Baud < 0 {
		return fmt.Errorf("serial.baud must be >= 0, got %d", cfg.Serial.Baud)
	}
	if cfg.Serial.ReadTimeoutMs < 0 {
		return fmt.Errorf("serial.read_timeout_ms must be >= 0, got %d", cfg.Serial.ReadTimeoutMs)
	}

	seen := make(map[bms.Request]bool)
	for _, name := range cfg.Poll.Requests {
		request, err := bms.ParseRequest(name)
		if err != nil {
			return fmt.Errorf("poll.requests: %w", err)
		}
		if seen[request] {
			return fmt.Errorf("poll.requests: %q listed twice", name)
		}
		seen[request] = true
	}

	durations := []struct {
		name  string
		value int
	}{
		{"poll.request_gap_ms", cfg.Poll.RequestGapMs},
		{"poll.settle_ms", cfg.Poll.SettleMs},
		{"poll.interval_ms", cfg.Poll.IntervalMs},
		{"poll.read_idle_ms", cfg.Poll.ReadIdleMs},
	}
	for _, d := range durations {
		if d.value < 0 {
			return fmt.Errorf("%s must be >= 0, got %d", d.name, d.value)
		}
	}

	if cfg.Log.Level != "" {
		if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}
	switch cfg.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", cfg.Log.Format)
	}

	return nil
}
