package scraper

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// humanizer injects randomized timing and input noise into a session so its
// interaction pattern does not form a uniform, machine-regular signature.
// Every delay it produces is a bounded random sleep, never a fixed one.
//
// One humanizer is shared by all concurrent searches and rand.Rand is not
// goroutine-safe, so every draw goes through the locked helpers below.
type humanizer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newHumanizer(rng *rand.Rand) *humanizer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &humanizer{rng: rng}
}

func (h *humanizer) intn(n int) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rng.Intn(n)
}

func (h *humanizer) int63n(n int64) int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rng.Int63n(n)
}

func (h *humanizer) float64() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rng.Float64()
}

// delay sleeps a uniformly random duration in [min, max], or returns early
// on context cancellation.
func (h *humanizer) delay(ctx context.Context, min, max time.Duration) error {
	d := min + time.Duration(h.int63n(int64(max-min)+1))
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// typingDelay is the per-character pause when entering a query.
func (h *humanizer) typingDelay() time.Duration {
	return time.Duration(25+h.intn(50)) * time.Millisecond
}

// mousePath generates 3-7 waypoints scattered around a random anchor inside
// a bounded screen region.
func (h *humanizer) mousePath() []proto.Point {
	startX := h.float64() * 800
	startY := h.float64() * 600
	count := 3 + h.intn(5)

	points := make([]proto.Point, 0, count)
	for i := 0; i < count; i++ {
		points = append(points, proto.Point{
			X: startX + (h.float64()*200 - 100),
			Y: startY + (h.float64()*200 - 100),
		})
	}
	return points
}

// simulate performs the behavioral-noise pass on a loaded results page:
// a multi-point mouse traversal followed by a natural scroll. Nothing is
// read back from the page.
func (h *humanizer) simulate(ctx context.Context, page *rod.Page) error {
	if err := h.delay(ctx, 3*time.Second, 6*time.Second); err != nil {
		return err
	}

	for _, point := range h.mousePath() {
		if err := page.Mouse.MoveLinear(point, 25); err != nil {
			return err
		}
		if err := h.delay(ctx, 100*time.Millisecond, 300*time.Millisecond); err != nil {
			return err
		}
	}

	return h.naturalScroll(ctx, page)
}

// naturalScroll walks down the page in randomized-size steps, then makes a
// few small upward corrections the way a reader skims back.
func (h *humanizer) naturalScroll(ctx context.Context, page *rod.Page) error {
	res, err := page.Eval(`() => document.documentElement.scrollHeight`)
	if err != nil {
		return err
	}
	scrollHeight := res.Value.Int()

	current := 0
	for current < scrollHeight {
		step := 50 + h.intn(100)
		if _, err := page.Eval(`(step) => window.scrollBy(0, step)`, step); err != nil {
			return err
		}
		current += step
		if err := h.delay(ctx, 100*time.Millisecond, 300*time.Millisecond); err != nil {
			return err
		}
	}

	for i := 0; i < 3; i++ {
		amount := h.intn(200)
		if _, err := page.Eval(`(amount) => window.scrollBy(0, -amount)`, amount); err != nil {
			return err
		}
		if err := h.delay(ctx, 200*time.Millisecond, 500*time.Millisecond); err != nil {
			return err
		}
	}

	return nil
}
