// Package logging configures the zerolog loggers shared by every component.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Canonical field names for structured logging.
const (
	FieldComponent = "component"
	FieldJobID     = "job_id"
	FieldOldState  = "old_state"
	FieldNewState  = "new_state"
	FieldPath      = "path"
	FieldBaseURL   = "base_url"
	FieldResource  = "resource"
	FieldKind      = "kind"
)

// Config captures options for building a logger.
type Config struct {
	Level  string    // "debug", "info", "warn", ... (defaults to info)
	Format string    // "console" or "json" (defaults to console)
	Output io.Writer // defaults to os.Stderr
}

var (
	mu   sync.RWMutex
	base = zerolog.New(io.Discard)
)

// New builds a logger from cfg without touching the process-wide base.
func New(cfg Config) zerolog.Logger {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level))); err == nil {
			level = parsed
		}
	}

	writer := cfg.Output
	if writer == nil {
		writer = os.Stderr
	}
	if !strings.EqualFold(cfg.Format, "json") {
		writer = zerolog.ConsoleWriter{Out: writer, TimeFormat: time.Kitchen, NoColor: !isTerminal(writer)}
	}

	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// Configure replaces the process-wide base logger.
func Configure(cfg Config) zerolog.Logger {
	l := New(cfg)
	mu.Lock()
	base = l
	mu.Unlock()
	return l
}

// Base returns the configured base logger. It discards output until Configure runs.
func Base() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// WithComponent returns a child of the base logger annotated with the component name.
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str(FieldComponent, component).Logger()
}
