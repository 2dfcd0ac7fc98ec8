// Package robots evaluates a site's crawl policy for one path.
//
// Only the wildcard (`User-agent: *`) group is honored and only Disallow
// prefix rules are supported. The gate fails open: if the policy document
// cannot be fetched, the path is treated as allowed. Decisions are computed
// per call and never cached.
package robots

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds the policy fetch when none is configured.
const DefaultTimeout = 10 * time.Second

// Gate decides whether a URL may be fetched according to the origin's
// robots.txt. Safe for concurrent use.
type Gate struct {
	timeout time.Duration

	// fetch is injectable for tests.
	fetch func(ctx context.Context, url string) ([]byte, int, error)
}

// NewGate creates a Gate. The proxy, if non-empty, is used for the policy
// fetch so the gate and the browser exit through the same address.
func NewGate(proxy string, timeout time.Duration) *Gate {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	f := newFetcher(proxy)
	return &Gate{
		timeout: timeout,
		fetch:   f.fetch,
	}
}

// IsAllowed reports whether rawURL's path may be fetched. The only way to
// get false is a well-formed policy document whose wildcard group disallows
// a prefix of the path; every failure mode answers true.
func (g *Gate) IsAllowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return true
	}

	robotsURL := u.Scheme + "://" + u.Host + "/robots.txt"

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	body, status, err := g.fetch(ctx, robotsURL)
	if err != nil {
		slog.Debug("robots: fetch failed, allowing", "url", robotsURL, "error", err)
		return true
	}
	if status < 200 || status >= 300 {
		slog.Debug("robots: non-success status, allowing", "url", robotsURL, "status", status)
		return true
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}

	return !pathDisallowed(path, wildcardDisallows(string(body)))
}

// wildcardDisallows parses the document and returns the Disallow values of
// the `User-agent: *` group(s). Parsing is tolerant: unrecognized lines,
// comments and malformed directives are skipped, never surfaced.
func wildcardDisallows(doc string) []string {
	var rules []string
	inWildcard := false

	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "user-agent":
			inWildcard = value == "*"
		case "disallow":
			if inWildcard {
				rules = append(rules, value)
			}
		}
	}

	return rules
}

// pathDisallowed reports whether path starts with any non-empty rule.
// An empty Disallow value means "allow everything" and never blocks.
func pathDisallowed(path string, rules []string) bool {
	for _, rule := range rules {
		if rule != "" && strings.HasPrefix(path, rule) {
			return true
		}
	}
	return false
}
