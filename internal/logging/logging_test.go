package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{" Info ", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"unknown", zapcore.WarnLevel},
		{"", zapcore.WarnLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewConsoleRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{Level: "info"})

	logger.Debug("hidden")
	logger.Info("shown", zap.String("key", "value"))
	_ = logger.Sync()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug entry written at info level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, `"key": "value"`) {
		t.Fatalf("output = %q, want info entry with field", out)
	}
}

func TestNewWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plume.log")
	var buf bytes.Buffer
	logger := New(&buf, Options{Level: "debug", File: path})

	logger.Warn("rotated", zap.Int("n", 3))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &m); err != nil {
		t.Fatalf("expected JSON entry, got error: %v\noutput: %s", err, data)
	}
	if m["msg"] != "rotated" || m["level"] != "warn" {
		t.Fatalf("entry = %v, want warn rotated", m)
	}
}
