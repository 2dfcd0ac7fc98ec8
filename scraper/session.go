package scraper

import (
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/serpscout/serpscout/config"
	"github.com/serpscout/serpscout/fingerprint"
	"github.com/serpscout/serpscout/models"
)

// Session is an exclusively-owned, short-lived browser process plus one
// page. A session is created at the start of a scrape and closed
// unconditionally at the end; it never outlives its orchestrating call and
// is never shared between calls.
type Session struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page

	closeOnce sync.Once
}

// sessionFactory creates a Session. Orchestrators hold one so tests can
// substitute a fake without launching Chromium.
type sessionFactory func() (*Session, error)

// launchSession starts a dedicated Chromium with anti-automation launch
// flags and opens one page in it.
func launchSession(cfg config.BrowserConfig) (*Session, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}
	if cfg.DefaultProxy != "" {
		l = l.Proxy(cfg.DefaultProxy)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-ipc-flooding-protection"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-prompt-on-repost"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("disable-notifications"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to launch browser",
			err,
		)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to connect to browser",
			err,
		)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to open page",
			err,
		)
	}

	slog.Debug("browser session launched", "controlURL", controlURL)
	return &Session{browser: browser, launcher: l, page: page}, nil
}

// Page returns the session's single page.
func (s *Session) Page() *rod.Page {
	return s.page
}

// Close tears the session down: page, browser connection, and the Chromium
// process itself. Safe to call multiple times; every orchestrator defers it
// so no exit path leaks a browser.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.browser != nil {
			if err := s.browser.Close(); err != nil {
				slog.Warn("session: browser close failed", "error", err)
			}
		}
		if s.launcher != nil {
			s.launcher.Kill()
		}
		slog.Debug("browser session closed")
	})
}

// InstallProfile applies a fingerprint profile to the session's page. Must
// run before the first navigation: the navigator overrides and stealth
// script are registered for document creation, and headers/cookies only
// cover requests issued afterwards.
func (s *Session) InstallProfile(p fingerprint.Profile) error {
	page := s.page

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent: p.UserAgent,
	}); err != nil {
		return models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to set user agent", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             p.ViewportWidth,
		Height:            p.ViewportHeight,
		DeviceScaleFactor: 1,
		Mobile:            false,
	}); err != nil {
		return models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to set viewport", err)
	}

	if len(p.Headers) > 0 {
		if err := (proto.NetworkSetExtraHTTPHeaders{
			Headers: toHeadersMap(p.Headers),
		}).Call(page); err != nil {
			return models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to set headers", err)
		}
	}

	// stealth.JS first (the broad baseline), then our overrides on top so
	// the profile's values win where both touch the same property.
	if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
		slog.Warn("stealth injection failed, proceeding without baseline", "error", err)
	}
	if _, err := page.EvalOnNewDocument(p.Overrides.Script()); err != nil {
		return models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to install navigator overrides", err)
	}

	for _, cookie := range p.Cookies {
		_, _ = proto.NetworkSetCookie{
			Name:   cookie.Name,
			Value:  cookie.Value,
			Domain: cookie.Domain,
			Path:   "/",
		}.Call(page)
	}

	return nil
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
