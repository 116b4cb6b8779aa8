package logging

import (
	"bytes"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelWarn)

	logger.Info("hidden")
	logger.Warn("Plan failed", "group_id", "g1")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Expected info message to be filtered, got %q", out)
	}
	if !strings.Contains(out, "Plan failed") || !strings.Contains(out, "group_id=g1") {
		t.Errorf("Expected warn message with attrs, got %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("Expected no color codes for non-terminal writer, got %q", out)
	}
}

func TestIsTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "log")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()

	if isTerminal(f) {
		t.Error("regular file reported as a terminal")
	}
	if isTerminal(&bytes.Buffer{}) {
		t.Error("buffer reported as a terminal")
	}
}
