package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/ufcstats-fighters/internal/pace"
)

// maxRetryBodyDrain bounds how much of a discarded response is read so the
// connection can be reused.
const maxRetryBodyDrain = 64 << 10

// DefaultStatusForcelist lists statuses that are retried before being handed back.
var DefaultStatusForcelist = []int{
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// RetryConfig controls retryTransport.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// BackoffFactor is the delay before the first retry; each later retry doubles it.
	BackoffFactor time.Duration
	// MaxBackoff caps a single delay. Zero means uncapped.
	MaxBackoff time.Duration
	// AttemptTimeout bounds each individual attempt. Zero means no limit.
	AttemptTimeout time.Duration
	// StatusForcelist defaults to DefaultStatusForcelist when nil.
	StatusForcelist []int
}

// retryTransport retries GET requests on connection errors and on the
// configured statuses. When status retries run out the last response is
// returned as-is so callers can inspect it.
type retryTransport struct {
	base   http.RoundTripper
	cfg    RetryConfig
	pauser pace.Pauser
	logger *zap.Logger
}

func newRetryTransport(base http.RoundTripper, cfg RetryConfig, pauser pace.Pauser, logger *zap.Logger) *retryTransport {
	if cfg.StatusForcelist == nil {
		cfg.StatusForcelist = DefaultStatusForcelist
	}
	if pauser == nil {
		pauser = pace.Timer{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &retryTransport{base: base, cfg: cfg, pauser: pauser, logger: logger}
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("retry transport received nil request")
	}
	if req.Method != http.MethodGet {
		return t.attempt(req)
	}
	for attempt := 0; ; attempt++ {
		resp, err := t.attempt(req)
		last := attempt >= t.cfg.MaxRetries
		var delay time.Duration
		switch {
		case err != nil:
			if last || !t.retryableError(req.Context(), err) {
				return nil, err
			}
			delay = t.backoff(attempt + 1)
			t.logger.Debug("Retrying after transport error",
				zap.String("url", req.URL.String()),
				zap.Int("retry", attempt+1),
				zap.Duration("delay", delay),
				zap.Error(err),
			)
		case last || !t.retryableStatus(resp.StatusCode):
			return resp, nil
		default:
			delay = t.backoff(attempt + 1)
			if after := retryAfter(resp); after > delay {
				delay = after
			}
			discard(resp)
			t.logger.Debug("Retrying after status",
				zap.String("url", req.URL.String()),
				zap.Int("status", resp.StatusCode),
				zap.Int("retry", attempt+1),
				zap.Duration("delay", delay),
			)
		}
		t.pauser.Pause(req.Context(), delay)
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, fmt.Errorf("retry transport backoff: %w", ctxErr)
		}
	}
}

// attempt performs one round trip bounded by AttemptTimeout. The attempt
// context is released when the response body is closed.
func (t *retryTransport) attempt(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	cancel := context.CancelFunc(func() {})
	if t.cfg.AttemptTimeout > 0 {
		var ctx context.Context
		ctx, cancel = context.WithTimeout(req.Context(), t.cfg.AttemptTimeout)
		clone = clone.WithContext(ctx)
	}
	resp, err := t.base.RoundTrip(clone)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("retry transport roundtrip: %w", err)
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

func (t *retryTransport) retryableError(parent context.Context, err error) bool {
	if parent.Err() != nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		strings.Contains(err.Error(), "connection reset")
}

func (t *retryTransport) retryableStatus(status int) bool {
	for _, s := range t.cfg.StatusForcelist {
		if s == status {
			return true
		}
	}
	return false
}

// backoff returns factor * 2^(retry-1), capped at MaxBackoff.
func (t *retryTransport) backoff(retry int) time.Duration {
	if retry < 1 || t.cfg.BackoffFactor <= 0 {
		return 0
	}
	delay := float64(t.cfg.BackoffFactor) * math.Pow(2, float64(retry-1))
	if t.cfg.MaxBackoff > 0 && delay > float64(t.cfg.MaxBackoff) {
		return t.cfg.MaxBackoff
	}
	return time.Duration(delay)
}

// retryAfter honors a delta-seconds Retry-After on 429 and 503 responses.
func retryAfter(resp *http.Response) time.Duration {
	if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode != http.StatusServiceUnavailable {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(resp.Header.Get("Retry-After")))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func discard(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxRetryBodyDrain))
	_ = resp.Body.Close()
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
