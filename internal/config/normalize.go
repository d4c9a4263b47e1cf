// internal/config/normalize.go
package config

import (
	"strings"
	"time"

	"github.com/jonamat/go-ninebot-bms/pkg/bms"
)

// Defaults applied by Normalize.
const (
	DefaultBaud          = 115200
	DefaultReadTimeoutMs = 100
	DefaultRequestGapMs  = 100
	DefaultSettleMs      = 500
	DefaultIntervalMs    = 2000
	DefaultReadIdleMs    = 10
	DefaultLogLevel      = "warn"
	DefaultLogFormat     = "console"
)

// Normalize applies post-validation defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Serial.Baud == 0 {
		cfg.Serial.Baud = DefaultBaud
	}
	if cfg.Serial.ReadTimeoutMs == 0 {
		cfg.Serial.ReadTimeoutMs = DefaultReadTimeoutMs
	}

	if len(cfg.Poll.Requests) == 0 {
		for _, request := range bms.DefaultRequests {
			cfg.Poll.Requests = append(cfg.Poll.Requests, string(request))
		}
	}
	for i, name := range cfg.Poll.Requests {
		cfg.Poll.Requests[i] = strings.ToLower(strings.TrimSpace(name))
	}

	if cfg.Poll.RequestGapMs == 0 {
		cfg.Poll.RequestGapMs = DefaultRequestGapMs
	}
	if cfg.Poll.SettleMs == 0 {
		cfg.Poll.SettleMs = DefaultSettleMs
	}
	if cfg.Poll.IntervalMs == 0 {
		cfg.Poll.IntervalMs = DefaultIntervalMs
	}
	if cfg.Poll.ReadIdleMs == 0 {
		cfg.Poll.ReadIdleMs = DefaultReadIdleMs
	}

	if cfg.Display.Clear == nil {
		enabled := true
		cfg.Display.Clear = &enabled
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

// ReadTimeout returns the serial read timeout.
func (c SerialConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutMs) * time.Millisecond
}

// Duration helpers for the monitor loops.
func (p PollConfig) RequestGap() time.Duration { return ms(p.RequestGapMs) }
func (p PollConfig) Settle() time.Duration { return ms(p.SettleMs) }
func (p PollConfig) Interval() time.Duration { return ms(p.IntervalMs) }
func (p PollConfig) ReadIdle() time.Duration { return ms(p.ReadIdleMs) }

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}
