package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeClock drives a Limiter deterministically: sleeps advance the clock
// instead of blocking.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1000, 0)}
}

func (c *fakeClock) install(l *Limiter) {
	l.now = func() time.Time { return c.now }
	l.sleep = func(ctx context.Context, d time.Duration) error {
		c.sleeps = append(c.sleeps, d)
		c.now = c.now.Add(d)
		return nil
	}
}

func TestWait_FirstCallDoesNotSleep(t *testing.T) {
	l := New(2 * time.Second)
	clock := newFakeClock()
	clock.install(l)

	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if len(clock.sleeps) != 0 {
		t.Errorf("first Wait slept %v, want no sleep", clock.sleeps)
	}
}

func TestWait_ImmediateSecondCallSleepsFullInterval(t *testing.T) {
	l := New(2 * time.Second)
	clock := newFakeClock()
	clock.install(l)

	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait: %v", err)
	}
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("second Wait: %v", err)
	}

	if len(clock.sleeps) != 1 {
		t.Fatalf("got %d sleeps, want 1", len(clock.sleeps))
	}
	if clock.sleeps[0] != 2*time.Second {
		t.Errorf("slept %v, want 2s", clock.sleeps[0])
	}
}

func TestWait_PartialElapsedSleepsRemainder(t *testing.T) {
	l := New(2 * time.Second)
	clock := newFakeClock()
	clock.install(l)

	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait: %v", err)
	}
	clock.now = clock.now.Add(1500 * time.Millisecond)
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("second Wait: %v", err)
	}

	if len(clock.sleeps) != 1 || clock.sleeps[0] != 500*time.Millisecond {
		t.Errorf("got sleeps %v, want [500ms]", clock.sleeps)
	}
}

func TestWait_IntervalAlreadyElapsed(t *testing.T) {
	l := New(2 * time.Second)
	clock := newFakeClock()
	clock.install(l)

	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait: %v", err)
	}
	clock.now = clock.now.Add(5 * time.Second)
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("second Wait: %v", err)
	}

	if len(clock.sleeps) != 0 {
		t.Errorf("slept %v after interval already elapsed", clock.sleeps)
	}
}

func TestWait_ConsecutiveCallsNeverCloserThanInterval(t *testing.T) {
	l := New(2 * time.Second)
	clock := newFakeClock()
	clock.install(l)

	var stamps []time.Time
	for i := 0; i < 5; i++ {
		if err := l.Wait(context.Background()); err != nil {
			t.Fatalf("Wait %d: %v", i, err)
		}
		stamps = append(stamps, clock.now)
	}

	for i := 1; i < len(stamps); i++ {
		if gap := stamps[i].Sub(stamps[i-1]); gap < 2*time.Second {
			t.Errorf("calls %d and %d only %v apart", i-1, i, gap)
		}
	}
}

func TestWait_ContextCancelAborts(t *testing.T) {
	l := New(50 * time.Millisecond)

	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := l.Wait(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Wait on cancelled context returned %v, want context.Canceled", err)
	}
}

func TestNew_NonPositiveIntervalUsesDefault(t *testing.T) {
	l := New(0)
	if l.interval != DefaultInterval {
		t.Errorf("interval = %v, want %v", l.interval, DefaultInterval)
	}
	l = New(-time.Second)
	if l.interval != DefaultInterval {
		t.Errorf("interval = %v, want %v", l.interval, DefaultInterval)
	}
}

func TestWait_RealSleepRespectsSpacing(t *testing.T) {
	l := New(100 * time.Millisecond)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := l.Wait(context.Background()); err != nil {
			t.Fatalf("Wait %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed < 200*time.Millisecond {
		t.Errorf("3 calls through a 100ms limiter took %v, want >= 200ms", elapsed)
	}
}
