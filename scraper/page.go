package scraper

import (
	"context"
	"errors"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/serpscout/serpscout/config"
	"github.com/serpscout/serpscout/models"
	"github.com/serpscout/serpscout/ratelimit"
	"github.com/serpscout/serpscout/robots"
	"github.com/serpscout/serpscout/structure"
)

// PageScraper drives the generic-page pipeline: policy gate → rate limit →
// session → navigation → capture → structuring. One instance may serve
// concurrent calls; each call owns its own session, and only fetch timing
// is coordinated through the shared limiter.
type PageScraper struct {
	browserCfg config.BrowserConfig
	cfg        config.ScraperConfig
	gate       *robots.Gate
	limiter    *ratelimit.Limiter
	structurer *structure.Structurer

	newSession sessionFactory
}

// NewPageScraper wires a PageScraper from explicitly passed components.
func NewPageScraper(
	browserCfg config.BrowserConfig,
	cfg config.ScraperConfig,
	gate *robots.Gate,
	limiter *ratelimit.Limiter,
	structurer *structure.Structurer,
) *PageScraper {
	return &PageScraper{
		browserCfg: browserCfg,
		cfg:        cfg,
		gate:       gate,
		limiter:    limiter,
		structurer: structurer,
		newSession: func() (*Session, error) { return launchSession(browserCfg) },
	}
}

// PageOptions carries per-call structuring options.
type PageOptions struct {
	// Mode selects the output rendering. Defaults to structure.ModeText.
	Mode structure.Mode

	// CSSSelector, when set, scopes the captured markup before structuring.
	CSSSelector string

	// ArticleMode runs readability first so only the main article body is
	// structured.
	ArticleMode bool
}

// Scrape runs the full generic-page pipeline for rawURL.
//
// Lifecycle (numbered steps match the inline comments):
//
//  1. Validate      – reject malformed URLs before any work
//  2. Policy check  – robots.txt gate; a disallow never launches a browser
//  3. Rate limit    – await our turn on the shared limiter
//  4. Launch        – dedicated session; DEFER close on every exit path
//  5. Navigate      – fixed UA, bounded navigation, network-idle wait
//  6. Settle        – fixed delay for deferred/dynamic content
//  7. Capture       – rendered markup + title + final URL
//  8. Structure     – recursive extraction into the requested mode
//
// The idle waiter is registered before Navigate: it installs a CDP
// listener, and registering it afterwards would miss in-flight requests
// and return instantly.
func (s *PageScraper) Scrape(ctx context.Context, rawURL string, opts PageOptions) (*ScrapeResult, error) {
	if opts.Mode == "" {
		opts.Mode = structure.ModeText
	}

	// ── 1. Validate ──────────────────────────────────────────────────
	target, err := models.URLTarget(rawURL)
	if err != nil {
		return nil, err
	}

	// ── 2. Policy check (no browser yet) ─────────────────────────────
	if s.cfg.RespectRobots && !s.gate.IsAllowed(ctx, rawURL) {
		return nil, models.NewScrapeError(
			models.ErrCodePolicyViolation,
			"path disallowed by the site's robots policy",
			nil,
		)
	}

	// ── 3. Rate limit ────────────────────────────────────────────────
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeTimeout, "rate limit wait aborted", err)
	}

	// ── 4. Launch session ────────────────────────────────────────────
	sessionStart := time.Now()
	session, err := s.newSession()
	if err != nil {
		return nil, err
	}
	defer session.Close()

	p := session.Page().Context(ctx)

	if err := p.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent: s.cfg.UserAgent,
	}); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to set user agent", err)
	}

	// ── 5. Navigate, waiting for network idle ───────────────────────
	np := p.Timeout(s.cfg.NavigationTimeout)
	waitIdle := np.WaitRequestIdle(500*time.Millisecond, nil, nil, nil)
	if err := np.Navigate(rawURL); err != nil {
		return nil, navigationError(err, "navigation to target URL failed")
	}
	waitIdle()

	// ── 6. Settle: fixed wait for deferred content ──────────────────
	if err := fixedSleep(ctx, s.cfg.SettleDelay); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeTimeout, "settle wait aborted", err)
	}

	// ── 7. Capture ───────────────────────────────────────────────────
	rawHTML, err := p.HTML()
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeExtraction, "failed to read rendered markup", err)
	}
	title := evalStringOrEmpty(p, `() => document.title`)
	finalURL := evalStringOrEmpty(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = rawURL
	}

	// ── 8. Structure ─────────────────────────────────────────────────
	structureStart := time.Now()
	content, err := s.structureMarkup(rawHTML, finalURL, opts)
	if err != nil {
		return nil, err
	}

	return &ScrapeResult{
		Target:      target,
		Timestamp:   time.Now(),
		Title:       title,
		SourceURL:   finalURL,
		StatusText:  "success",
		Content:     content,
		SessionMs:   structureStart.Sub(sessionStart).Milliseconds(),
		StructureMs: time.Since(structureStart).Milliseconds(),
	}, nil
}

// structureMarkup applies the optional scoping and article passes, then the
// structurer itself. Any failure here is an ExtractionFailure.
func (s *PageScraper) structureMarkup(rawHTML, sourceURL string, opts PageOptions) (string, error) {
	markup := rawHTML

	if opts.CSSSelector != "" {
		scoped, err := structure.Scope(markup, opts.CSSSelector)
		if err != nil {
			return "", models.NewScrapeError(models.ErrCodeExtraction, "invalid CSS selector", err)
		}
		markup = scoped
	}

	if opts.ArticleMode {
		article, ok := structure.ExtractArticle(markup, sourceURL)
		if ok {
			markup = article
		}
	}

	return s.structurer.Extract(markup, opts.Mode, sourceURL)
}

// navigationError wraps navigation failures, folding context expiry into
// the same classified kind: a timed-out load and a failed load are the same
// outcome for the caller.
func navigationError(err error, msg string) *models.ScrapeError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return models.NewScrapeError(models.ErrCodeNavigation, msg+" (timeout)", err)
	}
	return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
}

// fixedSleep waits exactly d, or returns early on context cancellation.
func fixedSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// evalStringOrEmpty evaluates a JS expression and returns the string result,
// swallowing any errors (used for optional metadata).
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}
