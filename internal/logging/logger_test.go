package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{
		Level:      LevelDebug,
		Output:     &buf,
		JSON:       true,
		AddSource:  false,
		TimeFormat: time.RFC3339,
	}

	logger := New(cfg)
	if logger == nil {
		t.Fatal("New logger should not be nil")
	}

	t.Run("Levels", func(t *testing.T) {
		buf.Reset()
		logger.Debug("debug msg")
		if !strings.Contains(buf.String(), "debug msg") {
			t.Error("debug logging failed")
		}

		buf.Reset()
		logger.Warn("warn msg")
		if !strings.Contains(buf.String(), "warn msg") {
			t.Error("warn logging failed")
		}
	})

	t.Run("DynamicLevel", func(t *testing.T) {
		logger.SetLevel(LevelError)

		buf.Reset()
		logger.Info("should not appear")
		if buf.Len() > 0 {
			t.Error("Logged info message when level was Error")
		}

		logger.SetLevel(LevelDebug)
	})

	t.Run("WithComponent", func(t *testing.T) {
		buf.Reset()
		logger.WithComponent("store").Info("msg")

		var rec map[string]any
		if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
			t.Fatalf("Failed to decode JSON log line: %v", err)
		}
		if rec["component"] != "store" {
			t.Errorf("component = %v, want store", rec["component"])
		}
	})

	t.Run("Audit", func(t *testing.T) {
		buf.Reset()
		logger.Audit("load", "cam", map[string]any{"backup": "backup-20240101-000000"})
		logStr := buf.String()
		if !strings.Contains(logStr, "AUDIT") {
			t.Error("Audit log missing AUDIT message")
		}
		if !strings.Contains(logStr, "backup-20240101-000000") {
			t.Error("Audit log missing details")
		}
	})
}

func TestConsoleHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, Output: &buf, TimeFormat: time.RFC3339})

	logger.WithComponent("Store").Info("saved configuration", "name", "cam", "note", "two words")

	line := buf.String()
	if !strings.Contains(line, "bootctl[") {
		t.Errorf("missing program prefix: %q", line)
	}
	if !strings.Contains(line, "[info] store: saved configuration") {
		t.Errorf("unexpected header: %q", line)
	}
	if !strings.Contains(line, "name=cam") {
		t.Errorf("missing attribute: %q", line)
	}
	if !strings.Contains(line, `note="two words"`) {
		t.Errorf("attribute with spaces should be quoted: %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Errorf("component should be promoted to the header: %q", line)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil {
			t.Errorf("ParseLevel(%q) error: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("ParseLevel should reject unknown levels")
	}
}

func TestDefaultLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Output = &buf
	SetDefault(New(cfg))

	WithComponent("comp").Info("hidden")
	if buf.Len() > 0 {
		t.Errorf("info logged at the default warn level: %q", buf.String())
	}

	Default().SetLevel(LevelDebug)
	WithComponent("comp").Debug("comp msg")
	if !strings.Contains(buf.String(), "comp: comp msg") {
		t.Errorf("component logger does not follow the default level: %q", buf.String())
	}
}
