// Package poll provides the repeating-fetch primitive behind the chat
// synchronizers: run a tick, wait the interval, repeat until the context is
// cancelled.
package poll

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

var ErrNotConfigured = errors.New("poll: poller missing tick function")

// Poller invokes Tick, waits Interval after the tick settles (success or
// failure), and repeats. Tick errors are swallowed: transient failures leave
// state stale for one interval instead of surfacing to the caller.
//
// Because the next tick is only scheduled after the previous one returns,
// at most one tick is in flight per Poller. Cancellation is cooperative: a
// tick already running when ctx is cancelled completes normally, and the
// loop stops before scheduling the next one.
type Poller struct {
	Name     string
	Interval time.Duration
	Tick     func(ctx context.Context) error
	Logger   *slog.Logger

	// After stands in for time.After in tests. Nil means time.After.
	After func(d time.Duration) <-chan time.Time
}

// Run loops until ctx is cancelled. The first tick fires immediately.
func (p *Poller) Run(ctx context.Context) error {
	if p.Tick == nil {
		return ErrNotConfigured
	}
	after := p.After
	if after == nil {
		after = time.After
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.Tick(ctx); err != nil && p.Logger != nil {
			p.Logger.Debug("poll tick failed", "poller", p.Name, "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-after(p.interval()):
		}
	}
}

func (p *Poller) interval() time.Duration {
	if p.Interval <= 0 {
		return time.Second
	}
	return p.Interval
}
