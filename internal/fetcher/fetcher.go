// Package fetcher retrieves fighter listing pages, falling back across
// candidate endpoints until one answers 200.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/JakeFAU/ufcstats-fighters/internal/pace"
)

// ErrNoContent is returned when every candidate endpoint failed.
var ErrNoContent = errors.New("no successful response")

// Config controls collector behavior.
type Config struct {
	Candidates     []Candidate
	UserAgent      string
	Accept         string
	AcceptLanguage string
	// Timeout bounds each HTTP attempt, retries included individually.
	Timeout time.Duration
	Retry   RetryConfig
	// CandidatePause is the wait after a transport failure before the next candidate.
	CandidatePause time.Duration
	// MaxBodyBytes limits the body read per page. Zero means unlimited.
	MaxBodyBytes int
}

// Page is a listing page body and the endpoint that served it.
type Page struct {
	Key       string
	URL       string
	Candidate Candidate
	Body      []byte
}

// Fetcher fetches listing pages through a shared colly collector. Each fetch
// clones the base collector, so all requests share one connection pool.
type Fetcher struct {
	cfg           Config
	pauser        pace.Pauser
	logger        *zap.Logger
	baseCollector *colly.Collector
}

type collectorHooks interface {
	OnRequest(colly.RequestCallback)
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

// attemptResult is filled in by the collector hooks for a single candidate.
type attemptResult struct {
	status int
	body   []byte
	err    error
}

// New builds a Fetcher. A nil pauser falls back to real timers.
func New(cfg Config, pauser pace.Pauser, logger *zap.Logger) *Fetcher {
	return newWithTransport(cfg, newHTTPTransport(), pauser, logger)
}

func newWithTransport(cfg Config, base http.RoundTripper, pauser pace.Pauser, logger *zap.Logger) *Fetcher {
	if pauser == nil {
		pauser = pace.Timer{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	retry := cfg.Retry
	retry.AttemptTimeout = cfg.Timeout

	c := colly.NewCollector(
		colly.Async(false),
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
		colly.MaxBodySize(cfg.MaxBodyBytes),
	)
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}
	// Attempts are bounded by the retry transport; a client-wide timeout
	// would also cut into the backoff schedule.
	c.SetRequestTimeout(0)
	c.WithTransport(newRetryTransport(base, retry, pauser, logger))

	return &Fetcher{
		cfg:           cfg,
		pauser:        pauser,
		logger:        logger,
		baseCollector: c,
	}
}

// Fetch tries each candidate in order and returns the first 200 response.
// Non-200 statuses and transport failures move on to the next candidate;
// when all fail the error wraps ErrNoContent and the last transport error.
func (f *Fetcher) Fetch(ctx context.Context, key string) (Page, error) {
	var lastErr error
	for _, candidate := range f.cfg.Candidates {
		if err := ctx.Err(); err != nil {
			return Page{}, fmt.Errorf("fetch %s canceled: %w", key, err)
		}
		url := candidate.URL(key)
		f.logger.Info("Scraping", zap.String("key", key), zap.String("url", url))

		result, err := f.fetchOne(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return Page{}, fmt.Errorf("fetch %s canceled: %w", key, ctx.Err())
			}
			lastErr = err
			f.logger.Warn("Request failed", zap.String("url", url), zap.Error(err))
			f.pauser.Pause(ctx, f.cfg.CandidatePause)
			continue
		}
		if result.status != http.StatusOK {
			f.logger.Warn("Unexpected status", zap.String("url", url), zap.Int("status", result.status))
			continue
		}
		return Page{Key: key, URL: url, Candidate: candidate, Body: result.body}, nil
	}

	if lastErr != nil {
		f.logger.Error("All attempts failed", zap.String("key", key), zap.Error(lastErr))
		return Page{}, fmt.Errorf("fetch %s: %w: %w", key, ErrNoContent, lastErr)
	}
	f.logger.Error("No successful response", zap.String("key", key))
	return Page{}, fmt.Errorf("fetch %s: %w", key, ErrNoContent)
}

func (f *Fetcher) fetchOne(ctx context.Context, url string) (attemptResult, error) {
	var result attemptResult
	collector := f.baseCollector.Clone()
	collector.Context = ctx
	f.configureCollectorHooks(collector, &result)
	if err := f.runCollector(ctx, collector, url, &result); err != nil {
		return attemptResult{}, err
	}
	return result, nil
}

func (f *Fetcher) configureCollectorHooks(hooks collectorHooks, result *attemptResult) {
	hooks.OnRequest(func(r *colly.Request) {
		f.setHeaders(r)
	})

	hooks.OnResponse(func(r *colly.Response) {
		result.status = r.StatusCode
		result.body = append([]byte(nil), r.Body...)
	})

	hooks.OnError(func(_ *colly.Response, err error) {
		result.err = err
	})
}

func (f *Fetcher) runCollector(ctx context.Context, collector *colly.Collector, url string, result *attemptResult) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("colly fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("colly visit failed: %w", err)
		}
		if result.err != nil {
			return fmt.Errorf("colly response failed: %w", result.err)
		}
		return nil
	}
}

func (f *Fetcher) setHeaders(r *colly.Request) {
	if f.cfg.UserAgent != "" {
		r.Headers.Set("User-Agent", f.cfg.UserAgent)
	}
	if f.cfg.Accept != "" {
		r.Headers.Set("Accept", f.cfg.Accept)
	}
	if f.cfg.AcceptLanguage != "" {
		r.Headers.Set("Accept-Language", f.cfg.AcceptLanguage)
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
