// internal/config/validate_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
)

// helper to build a config quickly
func pollConfig(requests ...string) *Config {
	return &Config{
		Poll: PollConfig{
			Requests: requests,
		},
	}
}

// ---- tests ----

func TestValidate_EmptyConfig(t *testing.T) {
	if err := Validate(&Config{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_KnownRequests(t *testing.T) {
	if err := Validate(pollConfig("info", "Status", " cells ")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_UnknownRequest(t *testing.T) {
	if err := Validate(pollConfig("info", "reboot")); err == nil {
		t.Fatalf("expected unknown request error, got nil")
	}
}

func TestValidate_DuplicateRequest(t *testing.T) {
	if err := Validate(pollConfig("cells", "CELLS")); err == nil {
		t.Fatalf("expected duplicate request error, got nil")
	}
}

func TestValidate_NegativeDuration(t *testing.T) {
	cfg := &Config{Poll: PollConfig{SettleMs: -1}}
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected negative duration error, got nil")
	}
}

func TestValidate_BadLogLevel(t *testing.T) {
	cfg := &Config{Log: LogConfig{Level: "loud"}}
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected log level error, got nil")
	}
}

func TestValidate_BadLogFormat(t *testing.T) {
	cfg := &Config{Log: LogConfig{Format: "xml"}}
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected log format error, got nil")
	}
}

func TestValidate_DoesNotMutate(t *testing.T) {
	cfg := pollConfig(" Info ")
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Poll.Requests[0] != " Info " || cfg.Serial.Baud != 0 {
		t.Fatalf("Validate mutated config: %+v", cfg)
	}
}

func TestNormalize_Defaults(t *testing.T) {
	cfg := &Config{}
	Normalize(cfg)

	if cfg.Serial.Baud != DefaultBaud || cfg.Serial.ReadTimeoutMs != DefaultReadTimeoutMs {
		t.Fatalf("serial defaults not applied: %+v", cfg.Serial)
	}
	if len(cfg.Poll.Requests) != 3 || cfg.Poll.Requests[0] != "info" || cfg.Poll.Requests[2] != "cells" {
		t.Fatalf("default requests = %v", cfg.Poll.Requests)
	}
	if cfg.Poll.Interval().Milliseconds() != DefaultIntervalMs {
		t.Fatalf("interval = %v", cfg.Poll.Interval())
	}
	if cfg.Display.Clear == nil || !*cfg.Display.Clear {
		t.Fatalf("display.clear should default to true")
	}
	if cfg.Log.Level != DefaultLogLevel || cfg.Log.Format != DefaultLogFormat {
		t.Fatalf("log defaults not applied: %+v", cfg.Log)
	}
}

func TestNormalize_KeepsExplicitValues(t *testing.T) {
	off := false
	cfg := &Config{
		Serial:  SerialConfig{Baud: 9600},
		Poll:    PollConfig{Requests: []string{" Cells "}, IntervalMs: 5000},
		Display: DisplayConfig{Clear: &off},
	}
	Normalize(cfg)

	if cfg.Serial.Baud != 9600 || cfg.Poll.IntervalMs != 5000 || *cfg.Display.Clear {
		t.Fatalf("explicit values overwritten: %+v", cfg)
	}
	if len(cfg.Poll.Requests) != 1 || cfg.Poll.Requests[0] != "cells" {
		t.Fatalf("requests = %v", cfg.Poll.Requests)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor.yaml")
	body := `
serial:
  port: /dev/ttyUSB1
  baud: 57600
poll:
  requests: [status, cells]
  interval_ms: 1000
display:
  clear: false
log:
  level: debug
  format: json
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load err=%v", err)
	}
	if cfg.Serial.Port != "/dev/ttyUSB1" || cfg.Serial.Baud != 57600 {
		t.Fatalf("serial = %+v", cfg.Serial)
	}
	if len(cfg.Poll.Requests) != 2 || cfg.Poll.IntervalMs != 1000 {
		t.Fatalf("poll = %+v", cfg.Poll)
	}
	if cfg.Display.Clear == nil || *cfg.Display.Clear {
		t.Fatalf("display.clear should be false")
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate err=%v", err)
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil || cfg == nil {
		t.Fatalf("Load(\"\") = %v, %v", cfg, err)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
