package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Search    SearchConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser sessions.
type BrowserConfig struct {
	// Headless controls whether sessions run headless. Search sessions
	// may need a visible window for manual CAPTCHA resolution.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// DefaultProxy is the proxy URL applied to all sessions.
	DefaultProxy string
}

// ScraperConfig controls generic-page scraping behavior.
type ScraperConfig struct {
	// UserAgent is the fixed user agent for generic-page sessions.
	UserAgent string

	// NavigationTimeout bounds navigation and element waits.
	NavigationTimeout time.Duration // default: 30s

	// SettleDelay is the fixed wait after navigation for deferred content.
	SettleDelay time.Duration // default: 2s

	// MinRequestInterval is the minimum spacing between fetches issued
	// through one scraper instance.
	MinRequestInterval time.Duration // default: 2s

	// RespectRobots toggles the robots.txt policy gate.
	RespectRobots bool // default: true

	// RobotsTimeout bounds the robots.txt fetch.
	RobotsTimeout time.Duration // default: 10s
}

// SearchConfig controls search-results scraping.
type SearchConfig struct {
	// BaseURL is the search engine's root page.
	BaseURL string // default: "https://www.google.com"

	// NavigationTimeout bounds home navigation and the results wait.
	NavigationTimeout time.Duration // default: 60s

	// ConsentTimeout bounds the consent dialog appearance and
	// disappearance waits.
	ConsentTimeout time.Duration // default: 10s

	// CaptchaTimeout bounds the wait for external CAPTCHA resolution.
	CaptchaTimeout time.Duration // default: 5m

	// ResultsSelector and MainSelector must both appear before results
	// are considered loaded.
	ResultsSelector string // default: "#search"
	MainSelector    string // default: "#main"

	// PanelSelector is the results panel whose inner markup is captured.
	PanelSelector string // default: "#center_col"

	// StatsSelector is the result-count line.
	StatsSelector string // default: "#result-stats"
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key API rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 1

	// Burst is the maximum burst size per API key.
	Burst int // default: 3
}

// CacheConfig controls the scrape response cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached responses.
	MaxEntries int // default: 500
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("SERPSCOUT_HOST", "0.0.0.0"),
			Port: envIntOr("SERPSCOUT_PORT", 8080),
			Mode: envOr("SERPSCOUT_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:     envBoolOr("SERPSCOUT_HEADLESS", true),
			NoSandbox:    envBoolOr("SERPSCOUT_NO_SANDBOX", false),
			BrowserBin:   os.Getenv("SERPSCOUT_BROWSER_BIN"),
			DefaultProxy: os.Getenv("SERPSCOUT_PROXY"),
		},
		Scraper: ScraperConfig{
			UserAgent:          envOr("SERPSCOUT_USER_AGENT", defaultUserAgent),
			NavigationTimeout:  envDurationOr("SERPSCOUT_NAV_TIMEOUT", 30*time.Second),
			SettleDelay:        envDurationOr("SERPSCOUT_SETTLE_DELAY", 2*time.Second),
			MinRequestInterval: envDurationOr("SERPSCOUT_MIN_REQUEST_INTERVAL", 2*time.Second),
			RespectRobots:      envBoolOr("SERPSCOUT_RESPECT_ROBOTS", true),
			RobotsTimeout:      envDurationOr("SERPSCOUT_ROBOTS_TIMEOUT", 10*time.Second),
		},
		Search: SearchConfig{
			BaseURL:           envOr("SERPSCOUT_SEARCH_URL", "https://www.google.com"),
			NavigationTimeout: envDurationOr("SERPSCOUT_SEARCH_NAV_TIMEOUT", 60*time.Second),
			ConsentTimeout:    envDurationOr("SERPSCOUT_CONSENT_TIMEOUT", 10*time.Second),
			CaptchaTimeout:    envDurationOr("SERPSCOUT_CAPTCHA_TIMEOUT", 5*time.Minute),
			ResultsSelector:   envOr("SERPSCOUT_RESULTS_SELECTOR", "#search"),
			MainSelector:      envOr("SERPSCOUT_MAIN_SELECTOR", "#main"),
			PanelSelector:     envOr("SERPSCOUT_PANEL_SELECTOR", "#center_col"),
			StatsSelector:     envOr("SERPSCOUT_STATS_SELECTOR", "#result-stats"),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("SERPSCOUT_AUTH_ENABLED", true),
			APIKeys: envSliceOr("SERPSCOUT_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("SERPSCOUT_RATE_RPS", 1.0),
			Burst:             envIntOr("SERPSCOUT_RATE_BURST", 3),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("SERPSCOUT_CACHE_MAX_ENTRIES", 500),
		},
		Log: LogConfig{
			Level:  envOr("SERPSCOUT_LOG_LEVEL", "info"),
			Format: envOr("SERPSCOUT_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
