// Package logging provides zap logger helpers.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/JakeFAU/ufcstats-fighters/internal/id/uuid"
)

// AppName is attached to every entry so scraper logs can be picked out of a
// shared stream.
const AppName = "fighterscrape"

// New builds a zap.Logger configured for development or production.
// Row-level diagnostics are emitted at debug level and only surface in development.
func New(development bool) (*zap.Logger, error) {
	logger, err := newConfig(development).Build()
	if err != nil {
		return nil, fmt.Errorf("build logger (development=%t): %w", development, err)
	}
	return logger, nil
}

func newConfig(development bool) zap.Config {
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.DisableStacktrace = true
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.InitialFields = map[string]any{"app": AppName}
	return cfg
}

// ForRun returns a child logger named after a scraper component and tagged
// with the run id and the time the run started.
func ForRun(base *zap.Logger, component string, run uuid.RunID) *zap.Logger {
	if base == nil {
		base = zap.NewNop()
	}
	logger := base.Named(component)
	if run != (uuid.RunID{}) {
		logger = logger.With(
			zap.String("run_id", run.String()),
			zap.Time("run_started", run.Started()),
		)
	}
	return logger
}
