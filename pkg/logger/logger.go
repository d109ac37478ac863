package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// ANSI colors for terminal output.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
)

// ColorHandler is a slog.Handler producing compact, colorized text lines:
// warnings yellow, errors red, info green, debug gray.
type ColorHandler struct {
	level slog.Level
	out   io.Writer
	attrs []slog.Attr
	mu    *sync.Mutex
}

// NewColorHandler creates a handler writing to out at the given level.
func NewColorHandler(out io.Writer, level slog.Level) *ColorHandler {
	return &ColorHandler{
		level: level,
		out:   out,
		mu:    &sync.Mutex{},
	}
}

// Enabled implements slog.Handler
func (h *ColorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle implements slog.Handler
func (h *ColorHandler) Handle(_ context.Context, r slog.Record) error {
	color := colorGray
	switch {
	case r.Level >= slog.LevelError:
		color = colorRed
	case r.Level >= slog.LevelWarn:
		color = colorYellow
	case r.Level >= slog.LevelInfo:
		color = colorGreen
	}

	var b strings.Builder
	b.WriteString(r.Time.Format("15:04:05.000"))
	b.WriteString(" ")
	b.WriteString(color)
	b.WriteString(r.Level.String())
	b.WriteString(colorReset)
	b.WriteString(" ")
	b.WriteString(r.Message)

	for _, attr := range h.attrs {
		fmt.Fprintf(&b, " %s=%v", attr.Key, attr.Value.Any())
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value.Any())
		return true
	})
	b.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

// WithAttrs implements slog.Handler
func (h *ColorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &ColorHandler{
		level: h.level,
		out:   h.out,
		attrs: merged,
		mu:    h.mu,
	}
}

// WithGroup implements slog.Handler. Groups are flattened; the handler is
// meant for human terminals, not structured sinks.
func (h *ColorHandler) WithGroup(name string) slog.Handler {
	return h
}

// NewDefaultLogger creates a colorized stderr logger at the given level.
func NewDefaultLogger(level slog.Level) *slog.Logger {
	return slog.New(NewColorHandler(os.Stderr, level))
}

// NewLogger creates a logger with the given format ("text" colorized,
// "json" structured) and level name (debug, info, warn, error).
func NewLogger(format, level string) *slog.Logger {
	lvl := ParseLevel(level)
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	}
	return NewDefaultLogger(lvl)
}

// ParseLevel maps a level name onto a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
