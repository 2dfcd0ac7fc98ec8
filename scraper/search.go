package scraper

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"

	"github.com/serpscout/serpscout/config"
	"github.com/serpscout/serpscout/fingerprint"
	"github.com/serpscout/serpscout/models"
	"github.com/serpscout/serpscout/structure"
)

// captchaFrameSelector matches the challenge iframe Google serves when it
// suspects automation.
const captchaFrameSelector = `iframe[src*="recaptcha"], iframe[src*="captcha"]`

// queryInputSelectors are the search-box candidates, most specific first.
// Google has shipped both textarea and input variants of the box.
var queryInputSelectors = []string{
	`textarea[name="q"]`,
	`input[name="q"]`,
	`textarea[title="Search"]`,
	`textarea[aria-label="Search"]`,
	`input[title="Search"]`,
	`input[type="text"]`,
}

// SearchScraper drives the search-results pipeline: a freshly fingerprinted
// session walks the engine's own front door, types the query like a person
// would, rides out consent and CAPTCHA interruptions, and captures the
// results panel. Each call owns its session end to end.
type SearchScraper struct {
	browserCfg config.BrowserConfig
	cfg        config.SearchConfig
	gen        *fingerprint.Generator
	structurer *structure.Structurer
	human      *humanizer

	newSession sessionFactory
}

// NewSearchScraper wires a SearchScraper from explicitly passed components.
// rng seeds the humanizer; pass nil for time-seeded randomness.
func NewSearchScraper(
	browserCfg config.BrowserConfig,
	cfg config.SearchConfig,
	gen *fingerprint.Generator,
	structurer *structure.Structurer,
	rng *rand.Rand,
) *SearchScraper {
	return &SearchScraper{
		browserCfg: browserCfg,
		cfg:        cfg,
		gen:        gen,
		structurer: structurer,
		human:      newHumanizer(rng),
		newSession: func() (*Session, error) { return launchSession(browserCfg) },
	}
}

// Search runs the full search-results pipeline for keyword.
//
// Lifecycle (numbered steps match the inline comments):
//
//  1. Validate   – reject empty keywords before any work
//  2. Launch     – dedicated session; DEFER close on every exit path
//  3. Profile    – fresh fingerprint installed before first navigation
//  4. Home       – navigate the engine's root page, not a results URL
//  5. Consent    – bounded dismissal of the cookie overlay (non-fatal)
//  6. Query      – locate the box, type per-keystroke, press Enter
//  7. Results    – bounded wait for the results containers
//  8. CAPTCHA    – detect; if present, poll for external resolution
//  9. Humanize   – mouse traversal and natural scrolling on the results
// 10. Capture    – results panel markup, title, stats line → structure
//
// The query is never smuggled into a URL: arriving via the homepage with a
// typed query keeps the session's request pattern consistent with the
// installed fingerprint.
func (s *SearchScraper) Search(ctx context.Context, keyword string, mode structure.Mode) (*ScrapeResult, error) {
	if mode == "" {
		mode = structure.ModeText
	}

	// ── 1. Validate ──────────────────────────────────────────────────
	target, err := models.KeywordTarget(keyword)
	if err != nil {
		return nil, err
	}
	keyword = target.Value

	// ── 2. Launch session ────────────────────────────────────────────
	sessionStart := time.Now()
	session, err := s.newSession()
	if err != nil {
		return nil, err
	}
	defer session.Close()

	// ── 3. Install a fresh fingerprint ──────────────────────────────
	profile := s.gen.Generate()
	if err := session.InstallProfile(profile); err != nil {
		return nil, err
	}
	slog.Debug("fingerprint installed",
		"userAgent", profile.UserAgent,
		"viewport", profile.ViewportWidth)

	p := session.Page().Context(ctx)

	if err := s.human.delay(ctx, time.Second, 3*time.Second); err != nil {
		return nil, abortErr(err)
	}

	// ── 4. Navigate to the engine home page ─────────────────────────
	if err := p.Timeout(s.cfg.NavigationTimeout).Navigate(s.cfg.BaseURL); err != nil {
		return nil, navigationError(err, "navigation to search home page failed")
	}
	if err := p.Timeout(s.cfg.NavigationTimeout).WaitLoad(); err != nil {
		return nil, navigationError(err, "search home page did not finish loading")
	}

	// ── 5. Dismiss the consent overlay (never fatal on its own) ─────
	if err := s.dismissConsent(ctx, p); err != nil {
		return nil, abortErr(err)
	}

	// ── 6. Type the query and submit ────────────────────────────────
	if err := s.typeQuery(ctx, p, keyword); err != nil {
		return nil, err
	}

	// ── 7. Wait for the results containers ──────────────────────────
	if err := s.waitForResults(p); err != nil {
		return nil, err
	}

	// ── 8. CAPTCHA: detect, then wait out external resolution ───────
	if err := s.awaitCaptcha(ctx, p); err != nil {
		return nil, err
	}

	// ── 9. Behavioral noise on the loaded results ───────────────────
	if err := s.human.simulate(ctx, p); err != nil {
		return nil, abortErr(err)
	}

	// ── 10. Capture and structure ────────────────────────────────────
	rawHTML, finalURL := s.capturePanel(p)
	structureStart := time.Now()
	content, err := s.structurer.Extract(rawHTML, mode, finalURL)
	if err != nil {
		return nil, err
	}

	return &ScrapeResult{
		Target:      target,
		Timestamp:   time.Now(),
		Title:       evalStringOrEmpty(p, `() => document.title`),
		SourceURL:   finalURL,
		StatusText:  "success",
		ResultStats: s.resultStats(p),
		Content:     content,
		SessionMs:   structureStart.Sub(sessionStart).Milliseconds(),
		StructureMs: time.Since(structureStart).Milliseconds(),
	}, nil
}

// typeQuery finds the search box, focuses it with a click, enters the
// keyword one keystroke at a time, and submits with Enter.
func (s *SearchScraper) typeQuery(ctx context.Context, page *rod.Page, keyword string) error {
	sel, box, found := firstSelector(page, queryInputSelectors)
	if !found {
		return models.NewScrapeError(
			models.ErrCodeNavigation,
			"search input not found on home page",
			nil,
		)
	}
	slog.Debug("search input located", "selector", sel)

	if err := box.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return models.NewScrapeError(models.ErrCodeNavigation, "failed to focus search input", err)
	}
	if err := s.human.delay(ctx, 200*time.Millisecond, 600*time.Millisecond); err != nil {
		return abortErr(err)
	}

	for _, r := range keyword {
		if err := page.InsertText(string(r)); err != nil {
			return models.NewScrapeError(models.ErrCodeNavigation, "failed to type query", err)
		}
		timer := time.NewTimer(s.human.typingDelay())
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return abortErr(ctx.Err())
		}
	}

	if err := s.human.delay(ctx, 300*time.Millisecond, 800*time.Millisecond); err != nil {
		return abortErr(err)
	}
	if err := page.Keyboard.Press(input.Enter); err != nil {
		return models.NewScrapeError(models.ErrCodeNavigation, "failed to submit query", err)
	}
	return nil
}

// waitForResults blocks until both results containers exist. A results page
// that renders one without the other is still loading, so both are required
// before capture proceeds.
func (s *SearchScraper) waitForResults(page *rod.Page) error {
	for _, sel := range []string{s.cfg.ResultsSelector, s.cfg.MainSelector} {
		if _, err := page.Timeout(s.cfg.NavigationTimeout).Element(sel); err != nil {
			return models.NewScrapeError(
				models.ErrCodeResultsTimeout,
				"results container did not appear: "+sel,
				err,
			)
		}
	}
	return nil
}

// awaitCaptcha checks for a challenge frame and, when one is present, polls
// until it is gone. The wait is for a human (or an external solver) to
// clear the challenge in a non-headless session; the scraper itself never
// attempts to solve it.
func (s *SearchScraper) awaitCaptcha(ctx context.Context, page *rod.Page) error {
	has, _, err := page.Has(captchaFrameSelector)
	if err != nil || !has {
		return nil
	}

	slog.Warn("CAPTCHA challenge detected, waiting for resolution",
		"timeout", s.cfg.CaptchaTimeout)

	waitErr := pollUntil(ctx, s.cfg.CaptchaTimeout, func() (bool, error) {
		present, _, err := page.Has(captchaFrameSelector)
		if err != nil {
			return false, nil
		}
		return !present, nil
	})
	switch {
	case waitErr == nil:
		slog.Info("CAPTCHA resolved, continuing")
		return nil
	case waitErr == errPollTimeout:
		return models.NewScrapeError(
			models.ErrCodeCaptchaUnresolved,
			"CAPTCHA challenge was not resolved in time",
			nil,
		)
	default:
		return abortErr(waitErr)
	}
}

// capturePanel returns the results-panel markup and the final page URL,
// falling back to the whole document when the panel selector misses. The
// capture is the panel's outer HTML; the structurer recurses through the
// wrapper element, so this extracts the same content as an inner capture.
func (s *SearchScraper) capturePanel(page *rod.Page) (string, string) {
	finalURL := evalStringOrEmpty(page, `() => window.location.href`)

	if has, panel, err := page.Has(s.cfg.PanelSelector); err == nil && has {
		if markup, err := panel.HTML(); err == nil {
			return markup, finalURL
		}
	}

	markup, err := page.HTML()
	if err != nil {
		return "", finalURL
	}
	return markup, finalURL
}

// resultStats reads the result-count line, empty when absent.
func (s *SearchScraper) resultStats(page *rod.Page) string {
	has, el, err := page.Has(s.cfg.StatsSelector)
	if err != nil || !has {
		return ""
	}
	text, err := el.Text()
	if err != nil {
		return ""
	}
	return text
}

// abortErr classifies context cancellation/expiry surfaced mid-pipeline.
func abortErr(err error) *models.ScrapeError {
	return models.NewScrapeError(models.ErrCodeTimeout, "scrape aborted", err)
}
