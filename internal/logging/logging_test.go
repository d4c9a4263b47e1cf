package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewLoggerJSON(t *testing.T) {
	var out bytes.Buffer
	logger := newLogger(&out, "json", zerolog.InfoLevel)

	logger.Debug().Msg("hidden")
	logger.Info().Str("component", "reader").Msg("frame")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one log line, got %q", out.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["component"] != "reader" || entry["message"] != "frame" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestNewLoggerConsole(t *testing.T) {
	var out bytes.Buffer
	logger := newLogger(&out, "console", zerolog.WarnLevel)
	logger.Warn().Msg("checksum mismatch")

	if !strings.Contains(out.String(), "checksum mismatch") {
		t.Fatalf("console output missing message: %q", out.String())
	}
}

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor.log")
	logger, closeLog, err := New(Options{Level: "info", Format: "json", File: path})
	if err != nil {
		t.Fatalf("New err=%v", err)
	}
	logger.Info().Msg("started")
	if err := closeLog(); err != nil {
		t.Fatalf("close err=%v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(raw), "started") {
		t.Fatalf("log file missing entry: %q", raw)
	}
}

func TestNewBadLevel(t *testing.T) {
	if _, _, err := New(Options{Level: "loud"}); err == nil {
		t.Fatalf("expected level error")
	}
}
