// Package refresher keeps the hazard cache current by polling the store on a
// fixed interval, backing off after failures.
package refresher

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/hazard-map/internal/observability"
)

const initialBackoff = 200 * time.Millisecond

// Source is anything that can reload itself from the store.
type Source interface {
	Refresh(ctx context.Context) error
}

// Refresher runs the poll loop.
type Refresher struct {
	source   Source
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics
	ready    atomic.Bool
}

// New creates a Refresher that polls source every interval.
func New(source Source, interval time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Refresher {
	return &Refresher{
		source:   source,
		interval: interval,
		clock:    clockwork.NewRealClock(),
		logger:   logger,
		metrics:  metrics,
	}
}

// WithClock replaces the time source.
func (r *Refresher) WithClock(c clockwork.Clock) *Refresher {
	r.clock = c
	return r
}

// CheckReadiness returns nil once a refresh has succeeded.
func (r *Refresher) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("hazards have not been refreshed yet")
	}
	return nil
}

// Run refreshes immediately and then every interval until ctx is cancelled.
// After a failure it retries sooner, starting at 200ms and doubling up to the
// interval.
func (r *Refresher) Run(ctx context.Context) error {
	r.logger.Info("refresher started", "interval", r.interval)
	r.metrics.RefreshLoopAlive.Set(1)
	defer r.metrics.RefreshLoopAlive.Set(0)

	backoff := initialBackoff
	for {
		wait := r.interval
		if err := r.source.Refresh(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			r.logger.Error("refresh failed", "error", err, "retry_in", backoff)
			wait = backoff
			backoff = nextBackoff(backoff, r.interval)
		} else {
			r.ready.Store(true)
			backoff = initialBackoff
		}

		if !r.sleep(ctx, wait) {
			break
		}
	}

	r.logger.Info("refresher stopping", "reason", ctx.Err())
	return nil
}

func (r *Refresher) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := r.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}
