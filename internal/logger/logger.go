package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"noteshare/internal/config"
)

var (
	singleton *slog.Logger
	once      sync.Once
)

// ServiceName is attached to every record emitted by the singleton.
const ServiceName = "noteshare"

// ParseLevel maps a config level name to a slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

// New builds a logger writing to w according to cfg. It does not touch the singleton.
func New(cfg config.Config, w io.Writer) *slog.Logger {
	level := ParseLevel(cfg.LogLevel)
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	switch cfg.LogFormat {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler).With("service", ServiceName)
}

// Init initializes the singleton logger from the provided config.
// The first call wins; later calls return the same instance.
func Init(cfg config.Config) (*slog.Logger, error) {
	once.Do(func() {
		singleton = New(cfg, os.Stdout)
		slog.SetDefault(singleton)
	})

	return singleton, nil
}

// L returns the singleton logger. Before Init it falls back to slog.Default()
// so packages can log from tests without wiring a config.
func L() *slog.Logger {
	if singleton == nil {
		return slog.Default()
	}
	return singleton
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
