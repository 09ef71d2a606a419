// Package scrape drives a full directory run: fetch and extract each key,
// deduplicate, and persist the dataset.
package scrape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/ufcstats-fighters/internal/fetcher"
	"github.com/JakeFAU/ufcstats-fighters/internal/fighter"
	"github.com/JakeFAU/ufcstats-fighters/internal/output"
	"github.com/JakeFAU/ufcstats-fighters/internal/pace"
	"github.com/JakeFAU/ufcstats-fighters/internal/storage/local"
)

// ErrNoRecords is returned when no key produced a single record. No output is written.
var ErrNoRecords = errors.New("parsed 0 fighters")

// PageFetcher retrieves the listing page for a key.
type PageFetcher interface {
	Fetch(ctx context.Context, key string) (fetcher.Page, error)
}

// PageExtractor turns a listing page into records.
type PageExtractor interface {
	Extract(ctx context.Context, page fetcher.Page) []fighter.Record
}

// Store persists the dataset.
type Store interface {
	Put(ctx context.Context, name string, data io.Reader) (local.Object, error)
	Stat(name string) (local.Object, error)
}

// Config controls a run.
type Config struct {
	Keys       []string
	KeyDelay   time.Duration
	OutputFile string
	SampleRows int
	RunID      string
}

// Summary reports what a run did.
type Summary struct {
	RunID       string
	Keys        int
	KeysFetched int
	Parsed      int
	Duplicates  int
	Records     int
	Written     bool
	OutputPath  string
	Bytes       int64
}

// Runner processes keys strictly in order, one at a time.
type Runner struct {
	cfg     Config
	fetcher PageFetcher
	extract PageExtractor
	store   Store
	pauser  pace.Pauser
	sample  io.Writer
	logger  *zap.Logger
}

// New builds a Runner. sample receives the preview table and may be nil.
func New(
	cfg Config,
	f PageFetcher,
	x PageExtractor,
	store Store,
	pauser pace.Pauser,
	sample io.Writer,
	logger *zap.Logger,
) *Runner {
	if pauser == nil {
		pauser = pace.Timer{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:     cfg,
		fetcher: f,
		extract: x,
		store:   store,
		pauser:  pauser,
		sample:  sample,
		logger:  logger,
	}
}

// Run fetches every configured key, then deduplicates and writes the CSV.
// Per-key failures only reduce the record count. The returned error is
// ErrNoRecords, a persistence failure, or a context error when interrupted.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	summary := Summary{RunID: r.cfg.RunID, Keys: len(r.cfg.Keys)}

	var all []fighter.Record
	for _, key := range r.cfg.Keys {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("Run interrupted", zap.String("next_key", key), zap.Error(err))
			return summary, fmt.Errorf("scrape interrupted: %w", err)
		}
		page, err := r.fetcher.Fetch(ctx, key)
		if err == nil {
			summary.KeysFetched++
			all = append(all, r.extract.Extract(ctx, page)...)
		}
		r.pauser.Pause(ctx, r.cfg.KeyDelay)
	}
	if err := ctx.Err(); err != nil {
		r.logger.Warn("Run interrupted before output", zap.Error(err))
		return summary, fmt.Errorf("scrape interrupted: %w", err)
	}

	summary.Parsed = len(all)
	if len(all) == 0 {
		r.logger.Error("Parsed 0 fighters. Check debug_*.html and selectors.")
		return summary, ErrNoRecords
	}

	kept, removed := fighter.Dedupe(all)
	summary.Duplicates = removed
	summary.Records = len(kept)
	r.logger.Info("Removed duplicates", zap.Int("removed", removed))

	if err := r.persist(ctx, kept, &summary); err != nil {
		r.logger.Error("Failed to save CSV", zap.String("file", r.cfg.OutputFile), zap.Error(err))
		return summary, err
	}
	return summary, nil
}

func (r *Runner) persist(ctx context.Context, records []fighter.Record, summary *Summary) error {
	var buf bytes.Buffer
	if err := output.WriteCSV(&buf, records); err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}
	obj, err := r.store.Put(ctx, r.cfg.OutputFile, &buf)
	if err != nil {
		return fmt.Errorf("write %s: %w", r.cfg.OutputFile, err)
	}
	r.logger.Info("Saved fighters", zap.Int("count", len(records)), zap.String("path", obj.Path))

	stat, err := r.store.Stat(r.cfg.OutputFile)
	if err != nil {
		return fmt.Errorf("verify %s: %w", r.cfg.OutputFile, err)
	}
	summary.Written = true
	summary.OutputPath = stat.Path
	summary.Bytes = stat.Size
	r.logger.Info("CSV file created successfully", zap.Int64("bytes", stat.Size))

	if preview := output.RenderSample(r.sample, records, r.cfg.SampleRows); preview != "" {
		r.logger.Debug("Sample data rendered", zap.Int("rows", min(r.cfg.SampleRows, len(records))))
	}
	return nil
}
