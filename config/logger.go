package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ParseLevel parses a log level name
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", level)
	}
	return l, nil
}

// NewLogger returns a logger writing text or JSON records at the given level
// to w
func NewLogger(level, format string, w io.Writer) (*slog.Logger, error) {

	l, err := ParseLevel(level)

	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{
		Level:     l,
		AddSource: l == slog.LevelDebug,
	}

	var handler slog.Handler

	switch format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text", "":
		handler = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}

	return slog.New(handler), nil
}
