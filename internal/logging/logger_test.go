// Package logging includes tests for the zap logger helpers.
package logging

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/JakeFAU/ufcstats-fighters/internal/id/uuid"
)

// TestNewDevelopmentLogger confirms the development logger builds and logs.
func TestNewDevelopmentLogger(t *testing.T) {
	t.Parallel()

	logger, err := New(true)
	if err != nil {
		t.Fatalf("New(true) error = %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger to be non-nil")
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected development logger to enable debug level")
	}
	logger.Debug("development logger ready")
}

// TestNewProductionLogger ensures the production logger configuration succeeds.
func TestNewProductionLogger(t *testing.T) {
	t.Parallel()

	logger, err := New(false)
	if err != nil {
		t.Fatalf("New(false) error = %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger to be non-nil")
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected production logger to drop debug level")
	}
	logger.Info("production logger ready")
}

func TestNewConfigTagsApp(t *testing.T) {
	t.Parallel()

	for _, dev := range []bool{true, false} {
		cfg := newConfig(dev)
		if got := cfg.InitialFields["app"]; got != AppName {
			t.Fatalf("development=%t: app field = %v, want %s", dev, got, AppName)
		}
		if cfg.EncoderConfig.TimeKey != "ts" {
			t.Fatalf("development=%t: time key = %q, want ts", dev, cfg.EncoderConfig.TimeKey)
		}
		if cfg.Development != dev {
			t.Fatalf("development=%t: cfg.Development = %t", dev, cfg.Development)
		}
	}
}

func TestForRunTagsRun(t *testing.T) {
	t.Parallel()

	run, err := uuid.New().NewRunID()
	if err != nil {
		t.Fatalf("NewRunID() error = %v", err)
	}

	core, logs := observer.New(zapcore.InfoLevel)
	logger := ForRun(zap.New(core), "scrape", run)
	logger.Info("hello")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].LoggerName != "scrape" {
		t.Fatalf("expected logger name scrape, got %q", entries[0].LoggerName)
	}
	fields := entries[0].ContextMap()
	if got := fields["run_id"]; got != run.String() {
		t.Fatalf("expected run_id %s, got %v", run, got)
	}
	started, ok := fields["run_started"].(time.Time)
	if !ok || !started.Equal(run.Started()) {
		t.Fatalf("expected run_started %v, got %v", run.Started(), fields["run_started"])
	}
}

func TestForRunZeroRun(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	ForRun(zap.New(core), "x", uuid.RunID{}).Info("hello")
	if _, ok := logs.All()[0].ContextMap()["run_id"]; ok {
		t.Fatal("expected no run_id for zero run")
	}
	if ForRun(nil, "x", uuid.RunID{}) == nil {
		t.Fatal("expected nop logger")
	}
}
