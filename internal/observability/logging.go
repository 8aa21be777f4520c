// Package observability builds the zap loggers shared by every encounter system.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/skirmish/internal/config"
)

// ServiceName is attached to every entry as the "service" field.
const ServiceName = "skirmish"

var formats = map[string]func() zap.Config{
	"json": func() zap.Config {
		c := zap.NewProductionConfig()
		c.Sampling = nil
		return c
	},
	"console": func() zap.Config {
		c := zap.NewDevelopmentConfig()
		c.DisableStacktrace = true
		c.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return c
	},
}

// NewLogger builds a logger for cfg.
//
// Precondition: cfg passed config validation.
// Postcondition: Returns a logger tagged with ServiceName, or a non-nil error.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}
	build, ok := formats[cfg.Format]
	if !ok {
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	zc := build()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.InitialFields = map[string]any{"service": ServiceName}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// EncounterLogger scopes base to one encounter and names it after the owning system.
//
// Precondition: base must be non-nil.
// Postcondition: every entry written through the result carries the "encounter" field.
func EncounterLogger(base *zap.Logger, system, encounterID string) *zap.Logger {
	return base.Named(system).With(zap.String("encounter", encounterID))
}
