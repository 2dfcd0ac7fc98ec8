// Package ratelimit enforces a minimum spacing between consecutive fetches
// issued through one scraper instance.
//
// This is advisory spacing, not a concurrency cap: two scrapers with
// separate limiters may fetch simultaneously. Callers sharing one Limiter
// are serialized with respect to fetch timing only.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is the minimum spacing applied when none is configured.
const DefaultInterval = 2 * time.Second

// Limiter spaces out fetches. Safe for concurrent use; the elapsed-time
// check, the suspension and the timestamp update happen under one lock so
// concurrent callers cannot race each other past the interval.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time

	// test seams
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Limiter with the given minimum interval. A non-positive
// interval falls back to DefaultInterval.
func New(interval time.Duration) *Limiter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Limiter{
		interval: interval,
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// Wait blocks until at least the configured interval has passed since the
// previous Wait returned, then stamps the current time. The lock is held
// for the whole check-sleep-stamp sequence: a second caller queues behind
// the first and observes the updated timestamp, so no two fetches through
// the same limiter begin closer than the interval.
//
// Context cancellation aborts the wait without stamping.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.last.IsZero() {
		if remaining := l.interval - l.now().Sub(l.last); remaining > 0 {
			if err := l.sleep(ctx, remaining); err != nil {
				return err
			}
		}
	}

	l.last = l.now()
	return nil
}

// sleepCtx sleeps for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
