package scraper

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-rod/rod"

	"github.com/serpscout/serpscout/config"
	"github.com/serpscout/serpscout/models"
	"github.com/serpscout/serpscout/ratelimit"
	"github.com/serpscout/serpscout/robots"
	"github.com/serpscout/serpscout/structure"
)

func testPageScraper(onLaunch func()) *PageScraper {
	return &PageScraper{
		cfg: config.ScraperConfig{
			NavigationTimeout: time.Second,
			SettleDelay:       time.Millisecond,
			RespectRobots:     false,
		},
		limiter:    ratelimit.New(time.Millisecond),
		structurer: structure.New(),
		newSession: func() (*Session, error) {
			if onLaunch != nil {
				onLaunch()
			}
			return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "no browser in tests", nil)
		},
	}
}

func TestScrape_InvalidURLRejectedBeforeLaunch(t *testing.T) {
	launched := false
	ps := testPageScraper(func() { launched = true })

	for _, bad := range []string{"", "not-a-url", "ftp://example.com/x", "/relative/path"} {
		_, err := ps.Scrape(context.Background(), bad, PageOptions{})
		var se *models.ScrapeError
		if !errors.As(err, &se) || se.Code != models.ErrCodeInvalidTarget {
			t.Errorf("Scrape(%q) error = %v, want INVALID_TARGET", bad, err)
		}
	}
	if launched {
		t.Error("invalid target launched a session")
	}
}

func TestScrape_CancelledContextAbortsBeforeLaunch(t *testing.T) {
	launched := false
	ps := testPageScraper(func() { launched = true })
	// Force the limiter to need a long sleep so cancellation is observed.
	ps.limiter = ratelimit.New(time.Minute)
	if err := ps.limiter.Wait(context.Background()); err != nil {
		t.Fatalf("priming limiter: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ps.Scrape(ctx, "https://example.com/", PageOptions{})
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if launched {
		t.Error("cancelled scrape launched a session")
	}
}

func TestScrape_RobotsDisallowBlocksBeforeLaunch(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /blocked\n"))
			return
		}
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer origin.Close()

	launched := false
	ps := testPageScraper(func() { launched = true })
	ps.cfg.RespectRobots = true
	ps.gate = robots.NewGate("", time.Second)

	_, err := ps.Scrape(context.Background(), origin.URL+"/blocked/page", PageOptions{})
	var se *models.ScrapeError
	if !errors.As(err, &se) || se.Code != models.ErrCodePolicyViolation {
		t.Errorf("error = %v, want POLICY_VIOLATION", err)
	}
	if launched {
		t.Error("disallowed path launched a browser session")
	}
}

func TestScrape_RobotsAllowedPathProceedsToLaunch(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /blocked\n"))
			return
		}
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer origin.Close()

	launched := false
	ps := testPageScraper(func() { launched = true })
	ps.cfg.RespectRobots = true
	ps.gate = robots.NewGate("", time.Second)

	_, err := ps.Scrape(context.Background(), origin.URL+"/open/page", PageOptions{})
	var se *models.ScrapeError
	if !errors.As(err, &se) || se.Code != models.ErrCodeBrowserCrash {
		t.Errorf("error = %v, want the fake factory's BROWSER_CRASH", err)
	}
	if !launched {
		t.Error("allowed path never reached the session factory")
	}
}

func TestScrape_SessionLaunchFailurePropagates(t *testing.T) {
	ps := testPageScraper(nil)
	_, err := ps.Scrape(context.Background(), "https://example.com/", PageOptions{})
	var se *models.ScrapeError
	if !errors.As(err, &se) || se.Code != models.ErrCodeBrowserCrash {
		t.Errorf("error = %v, want BROWSER_CRASH", err)
	}
}

func TestStructureMarkup_CSSSelectorScopesOutput(t *testing.T) {
	ps := testPageScraper(nil)
	raw := `<div id="keep"><p>wanted</p></div><div id="drop"><p>unwanted</p></div>`

	out, err := ps.structureMarkup(raw, "", PageOptions{Mode: structure.ModeText, CSSSelector: "#keep"})
	if err != nil {
		t.Fatalf("structureMarkup: %v", err)
	}
	if out != "wanted" {
		t.Errorf("got %q, want %q", out, "wanted")
	}
}

func TestStructureMarkup_SelectorMissFallsBackToFullDocument(t *testing.T) {
	ps := testPageScraper(nil)
	raw := `<p>everything</p>`

	out, err := ps.structureMarkup(raw, "", PageOptions{Mode: structure.ModeText, CSSSelector: "#nope"})
	if err != nil {
		t.Fatalf("structureMarkup: %v", err)
	}
	if out != "everything" {
		t.Errorf("got %q, want %q", out, "everything")
	}
}

func TestNavigationError_TimeoutAnnotated(t *testing.T) {
	err := navigationError(context.DeadlineExceeded, "load failed")
	if err.Code != models.ErrCodeNavigation {
		t.Errorf("code = %s, want NAVIGATION_FAILED", err.Code)
	}
	if !strings.Contains(err.Message, "timeout") {
		t.Errorf("message %q missing timeout annotation", err.Message)
	}

	plain := navigationError(errors.New("net::ERR_NAME_NOT_RESOLVED"), "load failed")
	if strings.Contains(plain.Message, "timeout") {
		t.Errorf("non-timeout error annotated as timeout: %q", plain.Message)
	}
}

func TestFixedSleep_CancelReturnsEarly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := fixedSleep(ctx, time.Minute); !errors.Is(err, context.Canceled) {
		t.Errorf("fixedSleep on cancelled ctx = %v, want context.Canceled", err)
	}

	start := time.Now()
	if err := fixedSleep(context.Background(), 10*time.Millisecond); err != nil {
		t.Errorf("fixedSleep: %v", err)
	}
	if time.Since(start) < 10*time.Millisecond {
		t.Error("fixedSleep returned before the delay elapsed")
	}
}

func TestPollUntil_ConditionAlreadyTrue(t *testing.T) {
	calls := 0
	err := pollUntil(context.Background(), time.Second, func() (bool, error) {
		calls++
		return true, nil
	})
	if err != nil {
		t.Fatalf("pollUntil: %v", err)
	}
	if calls != 1 {
		t.Errorf("predicate called %d times, want 1", calls)
	}
}

func TestPollUntil_TimeoutReturnsSentinel(t *testing.T) {
	err := pollUntil(context.Background(), 0, func() (bool, error) {
		return false, nil
	})
	if err != errPollTimeout {
		t.Errorf("pollUntil = %v, want errPollTimeout", err)
	}
}

func TestPollUntil_PredicateErrorStopsPolling(t *testing.T) {
	boom := errors.New("boom")
	err := pollUntil(context.Background(), time.Second, func() (bool, error) {
		return false, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("pollUntil = %v, want predicate error", err)
	}
}

func TestPollUntil_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := pollUntil(ctx, time.Minute, func() (bool, error) {
		return false, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("pollUntil = %v, want context.Canceled", err)
	}
}

func TestFirstCandidate_OrderAndFallthrough(t *testing.T) {
	want := &rod.Element{}
	el, found := firstCandidate(
		func() (*rod.Element, error) { return nil, errors.New("broken lookup") },
		func() (*rod.Element, error) { return nil, nil },
		func() (*rod.Element, error) { return want, nil },
	)
	if !found || el != want {
		t.Error("firstCandidate did not fall through to the first match")
	}

	if _, found := firstCandidate(
		func() (*rod.Element, error) { return nil, nil },
	); found {
		t.Error("firstCandidate reported a match with no candidates matching")
	}
}

func TestHumanizer_TypingDelayBounds(t *testing.T) {
	h := newHumanizer(rand.New(rand.NewSource(1)))
	for i := 0; i < 100; i++ {
		d := h.typingDelay()
		if d < 25*time.Millisecond || d >= 75*time.Millisecond {
			t.Fatalf("typing delay %v out of [25ms, 75ms)", d)
		}
	}
}

func TestHumanizer_MousePathSize(t *testing.T) {
	h := newHumanizer(rand.New(rand.NewSource(2)))
	for i := 0; i < 50; i++ {
		path := h.mousePath()
		if len(path) < 3 || len(path) > 7 {
			t.Fatalf("mouse path has %d points, want 3-7", len(path))
		}
	}
}

func TestHumanizer_ConcurrentDraws(t *testing.T) {
	// One humanizer is shared across concurrent searches; its draws must
	// be safe under -race.
	h := newHumanizer(rand.New(rand.NewSource(6)))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if d := h.typingDelay(); d <= 0 {
					t.Error("non-positive typing delay")
					return
				}
				if len(h.mousePath()) == 0 {
					t.Error("empty mouse path")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestHumanizer_DelayHonorsCancel(t *testing.T) {
	h := newHumanizer(rand.New(rand.NewSource(3)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := h.delay(ctx, time.Minute, 2*time.Minute); !errors.Is(err, context.Canceled) {
		t.Errorf("delay on cancelled ctx = %v, want context.Canceled", err)
	}
}

func TestSearch_EmptyKeywordRejectedBeforeLaunch(t *testing.T) {
	launched := false
	ss := &SearchScraper{
		cfg:        config.SearchConfig{},
		structurer: structure.New(),
		human:      newHumanizer(rand.New(rand.NewSource(4))),
		newSession: func() (*Session, error) {
			launched = true
			return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "no browser in tests", nil)
		},
	}

	for _, bad := range []string{"", "   ", "\t\n"} {
		_, err := ss.Search(context.Background(), bad, structure.ModeText)
		var se *models.ScrapeError
		if !errors.As(err, &se) || se.Code != models.ErrCodeInvalidTarget {
			t.Errorf("Search(%q) error = %v, want INVALID_TARGET", bad, err)
		}
	}
	if launched {
		t.Error("empty keyword launched a session")
	}
}
