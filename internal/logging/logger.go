package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// contextKey is the type for context keys
type contextKey string

const (
	// RequestIDKey is the context key for request IDs
	RequestIDKey contextKey = "request_id"
	// UserIDKey is the context key for the authenticated user ID
	UserIDKey contextKey = "user_id"
)

// Config holds logging configuration
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, text
	Output io.Writer
}

// New creates a zerolog logger from cfg. Unknown levels fall back to info.
func New(cfg Config) zerolog.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	if cfg.Format == "text" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Str("service", "musiccatalog").
		Logger()
}

// Setup configures the global logger.
func Setup(cfg Config) zerolog.Logger {
	logger := New(cfg)
	log.Logger = logger
	return logger
}

// WithContext returns the global logger enriched with request scoped values
func WithContext(ctx context.Context) *zerolog.Logger {
	logger := log.With()

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		logger = logger.Str("request_id", requestID)
	}

	if userID, ok := ctx.Value(UserIDKey).(int64); ok {
		logger = logger.Int64("user_id", userID)
	}

	contextLogger := logger.Logger()
	return &contextLogger
}
