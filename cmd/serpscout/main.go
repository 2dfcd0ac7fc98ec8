package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/serpscout/serpscout/api"
	"github.com/serpscout/serpscout/cache"
	"github.com/serpscout/serpscout/config"
	"github.com/serpscout/serpscout/fingerprint"
	"github.com/serpscout/serpscout/ratelimit"
	"github.com/serpscout/serpscout/robots"
	"github.com/serpscout/serpscout/scraper"
	"github.com/serpscout/serpscout/structure"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("serpscout starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"headless", cfg.Browser.Headless,
	)

	// ── 3. Wire the scraping core ───────────────────────────────────
	gate := robots.NewGate(cfg.Browser.DefaultProxy, cfg.Scraper.RobotsTimeout)
	limiter := ratelimit.New(cfg.Scraper.MinRequestInterval)
	structurer := structure.New()
	gen := fingerprint.NewGenerator(nil, cookieDomain(cfg.Search.BaseURL))

	pageScraper := scraper.NewPageScraper(cfg.Browser, cfg.Scraper, gate, limiter, structurer)
	searchScraper := scraper.NewSearchScraper(cfg.Browser, cfg.Search, gen, structurer, nil)

	// ── 4. Cache + router ───────────────────────────────────────────
	cc := cache.New(cfg.Cache.MaxEntries)
	startTime := time.Now()
	router := api.NewRouter(pageScraper, searchScraper, cfg, cc, startTime)

	// ── 5. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 6. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete. Sessions are per-call
	// and close with their requests, so nothing else needs draining.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("serpscout stopped")
}

// cookieDomain derives the seed-cookie domain from the search base URL,
// e.g. "https://www.google.com" → ".google.com".
func cookieDomain(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return ".google.com"
	}
	host := u.Hostname()
	host = strings.TrimPrefix(host, "www.")
	return "." + host
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
