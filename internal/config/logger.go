package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// ParseLevel converts a log level name to its slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}

// NewLogger builds the application logger. Without a log file it writes
// colored records to stderr when stderr is a terminal. The returned closer
// releases the log file, if any.
func NewLogger(level, file string) (*slog.Logger, io.Closer, error) {
	ll := &slog.LevelVar{}
	l, err := ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}
	ll.Set(l)

	if file == "" {
		h := tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
			Level:      ll,
			TimeFormat: "15:04:05.000",
			NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
		})
		return slog.New(h), io.NopCloser(nil), nil
	}

	if err := InitLogLoc(file); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: ll})), f, nil
}
