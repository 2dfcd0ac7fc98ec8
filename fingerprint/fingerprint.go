// Package fingerprint generates randomized but internally consistent
// browser identities used to blend automated sessions into normal traffic.
//
// A Profile is a pure value: generating one has no side effects, and the
// session layer is responsible for installing it. Profiles are never reused
// across sessions — a stable fingerprint would make sessions correlatable.
package fingerprint

import (
	"math/rand"
	"sync"
	"time"
)

// Viewport size ranges, matching the spread of common desktop resolutions.
const (
	minViewportWidth  = 1366
	maxViewportWidth  = 1920
	minViewportHeight = 768
	maxViewportHeight = 1080
)

// SeedCookie is a cookie planted before the first navigation so the session
// does not arrive with a suspiciously empty jar.
type SeedCookie struct {
	Name   string
	Value  string
	Domain string
}

// Profile is one coherent browser identity: user agent, viewport, headers,
// navigator property overrides and seed cookies all describe the same
// fictional machine.
type Profile struct {
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int

	// Headers is the extra HTTP header set consistent with UserAgent.
	Headers map[string]string

	// Overrides drives the navigator-property masking script.
	Overrides NavigatorOverrides

	// Cookies are planted into the session before navigation.
	Cookies []SeedCookie
}

// Generator produces fresh profiles from an injectable randomness source,
// so tests can seed it deterministically. Safe for concurrent use: one
// Generator serves every search session, and rand.Rand itself is not
// goroutine-safe, so all draws happen under the mutex.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand

	// cookieDomain is the domain seed cookies are scoped to.
	cookieDomain string
}

// NewGenerator creates a Generator. A nil rng falls back to a time-seeded
// source.
func NewGenerator(rng *rand.Rand, cookieDomain string) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rng: rng, cookieDomain: cookieDomain}
}

// Generate draws one profile. Every call produces an independent identity.
func (g *Generator) Generate() Profile {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := identities[g.rng.Intn(len(identities))]

	width := minViewportWidth + g.rng.Intn(maxViewportWidth-minViewportWidth)
	height := minViewportHeight + g.rng.Intn(maxViewportHeight-minViewportHeight)

	concurrency := []int{4, 8, 12, 16}[g.rng.Intn(4)]
	memory := []int{4, 8}[g.rng.Intn(2)]

	return Profile{
		UserAgent:      id.userAgent,
		ViewportWidth:  width,
		ViewportHeight: height,
		Headers:        buildHeaders(id),
		Overrides: NavigatorOverrides{
			Platform:            id.platform,
			Vendor:              id.vendor,
			Languages:           id.languages,
			HardwareConcurrency: concurrency,
			DeviceMemory:        memory,
		},
		Cookies: g.seedCookies(),
	}
}

// buildHeaders assembles the header set for one identity. The client hints
// must agree with the user agent or the combination is flagged server-side.
func buildHeaders(id identity) map[string]string {
	return map[string]string{
		"Accept":                      "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7",
		"Accept-Language":             id.acceptLanguage,
		"Accept-Encoding":             "gzip, deflate, br",
		"Upgrade-Insecure-Requests":   "1",
		"Sec-Fetch-Dest":              "document",
		"Sec-Fetch-Mode":              "navigate",
		"Sec-Fetch-Site":              "none",
		"Sec-Fetch-User":              "?1",
		"Cache-Control":               "max-age=0",
		"DNT":                         "1",
		"Sec-Ch-Ua":                   id.secChUa,
		"Sec-Ch-Ua-Mobile":            "?0",
		"Sec-Ch-Ua-Platform":          `"` + id.secChUaPlatform + `"`,
		"Sec-Ch-Ua-Arch":              `"` + id.arch + `"`,
		"Sec-Ch-Ua-Bitness":           `"64"`,
		"Sec-Ch-Ua-Model":             `""`,
		"Sec-Ch-Ua-Platform-Version":  `"` + id.platformVersion + `"`,
	}
}

// seedCookies returns the consent and session-token cookies expected on a
// returning visitor. Caller holds g.mu.
func (g *Generator) seedCookies() []SeedCookie {
	return []SeedCookie{
		{Name: "CONSENT", Value: "YES+cb.20240220-08-p0.en+FX+410", Domain: g.cookieDomain},
		{Name: "AEC", Value: "AUEFqZf" + g.randToken(16), Domain: g.cookieDomain},
		{Name: "NID", Value: "511=" + g.randToken(24), Domain: g.cookieDomain},
	}
}

const tokenAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// randToken returns a base36 token of the given length. Caller holds g.mu.
func (g *Generator) randToken(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = tokenAlphabet[g.rng.Intn(len(tokenAlphabet))]
	}
	return string(b)
}
