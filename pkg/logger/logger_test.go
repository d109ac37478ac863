package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"garbage", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestColorHandlerWritesMessageAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewColorHandler(&buf, slog.LevelInfo))

	log.Info("snapshot loaded", "nodes", 42)

	out := buf.String()
	if !strings.Contains(out, "snapshot loaded") {
		t.Errorf("message missing from output: %q", out)
	}
	if !strings.Contains(out, "nodes=42") {
		t.Errorf("attr missing from output: %q", out)
	}
}

func TestColorHandlerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewColorHandler(&buf, slog.LevelWarn))

	log.Info("dropped")
	log.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("info record must be filtered: %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("warn record must pass: %q", out)
	}
}

func TestColorHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewColorHandler(&buf, slog.LevelInfo)).With("source", "vector")

	log.Info("dispatched")

	if !strings.Contains(buf.String(), "source=vector") {
		t.Errorf("bound attr missing: %q", buf.String())
	}
}
