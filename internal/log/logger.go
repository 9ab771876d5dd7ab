// Package log wraps slog with component tagging and env-driven setup shared
// by the server and worker binaries.
package log

import (
	"log/slog"
	"os"
	"strings"
)

// Logger is an slog.Logger that stamps a component on every record.
type Logger struct {
	*slog.Logger
	component string
}

type Config struct {
	Level     slog.Level
	Component string
	// JSON switches to the JSON handler; the text handler is the default
	// for local development.
	JSON bool
}

// ConfigFromEnv reads LOG_LEVEL (debug|info|warn|error) and LOG_FORMAT
// (json|text).
func ConfigFromEnv(component string) Config {
	cfg := Config{Level: slog.LevelInfo, Component: component}
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		cfg.Level = slog.LevelDebug
	case "warn":
		cfg.Level = slog.LevelWarn
	case "error":
		cfg.Level = slog.LevelError
	}
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		cfg.JSON = true
	}
	return cfg
}

func New(config Config) *Logger {
	opts := &slog.HandlerOptions{Level: config.Level}
	var handler slog.Handler
	if config.JSON {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger:    slog.New(handler).With("component", config.Component),
		component: config.Component,
	}
}

// WithComponent returns a logger tagged with a different component.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger:    l.Logger.With("component", component),
		component: component,
	}
}

func (l *Logger) Component() string {
	return l.component
}

// SetDefault routes the package-level slog calls through this logger.
func SetDefault(logger *Logger) {
	slog.SetDefault(logger.Logger)
}
