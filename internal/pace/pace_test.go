package pace

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimerPauseWaits(t *testing.T) {
	t.Parallel()

	start := time.Now()
	Timer{}.Pause(context.Background(), 20*time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestTimerPauseHonorsCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	Timer{}.Pause(ctx, time.Hour)
	assert.Less(t, time.Since(start), time.Second)
}

func TestTimerPauseZeroDelay(t *testing.T) {
	t.Parallel()

	start := time.Now()
	Timer{}.Pause(context.Background(), 0)
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestRecorder(t *testing.T) {
	t.Parallel()

	var r Recorder
	r.Pause(context.Background(), time.Second)
	r.Pause(context.Background(), 0)
	assert.Equal(t, []time.Duration{time.Second, 0}, r.Delays())
}
