// Package pace provides context-aware pauses used to space out requests.
package pace

import (
	"context"
	"sync"
	"time"
)

// Pauser blocks for a delay or until the context ends, whichever comes first.
type Pauser interface {
	Pause(ctx context.Context, delay time.Duration)
}

// Timer pauses using a real timer.
type Timer struct{}

// Pause waits for delay or ctx cancellation. Non-positive delays return immediately.
func (Timer) Pause(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Recorder captures requested delays without sleeping. Tests use it to assert pacing.
type Recorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

// Pause records delay and returns immediately.
func (r *Recorder) Pause(_ context.Context, delay time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, delay)
}

// Delays returns a copy of the recorded delays.
func (r *Recorder) Delays() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.delays...)
}
