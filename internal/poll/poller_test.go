package poll

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRequiresTick(t *testing.T) {
	p := &Poller{}
	err := p.Run(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestTicksUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var ticks atomic.Int32
	p := &Poller{
		Interval: time.Millisecond,
		Tick: func(ctx context.Context) error {
			if ticks.Add(1) >= 3 {
				cancel()
			}
			return nil
		},
	}
	err := p.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.GreaterOrEqual(t, ticks.Load(), int32(3))
}

func TestErrorsAreSwallowed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var ticks atomic.Int32
	p := &Poller{
		Interval: time.Millisecond,
		Tick: func(ctx context.Context) error {
			if ticks.Add(1) >= 4 {
				cancel()
			}
			return errors.New("boom")
		},
	}
	err := p.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	// The loop kept going despite every tick failing.
	assert.GreaterOrEqual(t, ticks.Load(), int32(4))
}

func TestAtMostOneTickInFlight(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var inFlight atomic.Int32
	var overlap atomic.Bool
	var ticks atomic.Int32
	p := &Poller{
		// Tick takes much longer than the interval; the poller must not
		// start a second tick while one is running.
		Interval: time.Millisecond,
		Tick: func(ctx context.Context) error {
			if inFlight.Add(1) > 1 {
				overlap.Store(true)
			}
			time.Sleep(10 * time.Millisecond)
			inFlight.Add(-1)
			if ticks.Add(1) >= 3 {
				cancel()
			}
			return nil
		},
	}
	err := p.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, overlap.Load(), "overlapping ticks observed")
}

func TestIntervalWaitedAfterTickSettles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	waits := make(chan time.Duration, 8)
	release := make(chan time.Time, 1)
	var ticks atomic.Int32
	p := &Poller{
		Interval: 42 * time.Millisecond,
		Tick: func(ctx context.Context) error {
			if ticks.Add(1) >= 2 {
				cancel()
			}
			return nil
		},
		After: func(d time.Duration) <-chan time.Time {
			waits <- d
			return release
		},
	}
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	// The poller asks for exactly the configured interval after the first
	// tick settles.
	select {
	case d := <-waits:
		assert.Equal(t, 42*time.Millisecond, d)
	case <-time.After(time.Second):
		t.Fatal("poller never waited")
	}
	release <- time.Now()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestCancelledBeforeFirstTick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var ticks atomic.Int32
	p := &Poller{
		Interval: time.Millisecond,
		Tick: func(ctx context.Context) error {
			ticks.Add(1)
			return nil
		},
	}
	err := p.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, ticks.Load())
}
