package fingerprint

import (
	"math/rand"
	"strings"
	"sync"
	"testing"
)

func TestGenerate_Deterministic(t *testing.T) {
	a := NewGenerator(rand.New(rand.NewSource(42)), ".example.com").Generate()
	b := NewGenerator(rand.New(rand.NewSource(42)), ".example.com").Generate()

	if a.UserAgent != b.UserAgent {
		t.Errorf("same seed produced different user agents: %q vs %q", a.UserAgent, b.UserAgent)
	}
	if a.ViewportWidth != b.ViewportWidth || a.ViewportHeight != b.ViewportHeight {
		t.Errorf("same seed produced different viewports: %dx%d vs %dx%d",
			a.ViewportWidth, a.ViewportHeight, b.ViewportWidth, b.ViewportHeight)
	}
	if a.Overrides.HardwareConcurrency != b.Overrides.HardwareConcurrency {
		t.Errorf("same seed produced different concurrency: %d vs %d",
			a.Overrides.HardwareConcurrency, b.Overrides.HardwareConcurrency)
	}
}

func TestGenerate_ViewportWithinRange(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewSource(7)), ".example.com")

	for i := 0; i < 100; i++ {
		p := g.Generate()
		if p.ViewportWidth < minViewportWidth || p.ViewportWidth >= maxViewportWidth {
			t.Fatalf("width %d out of [%d, %d)", p.ViewportWidth, minViewportWidth, maxViewportWidth)
		}
		if p.ViewportHeight < minViewportHeight || p.ViewportHeight >= maxViewportHeight {
			t.Fatalf("height %d out of [%d, %d)", p.ViewportHeight, minViewportHeight, maxViewportHeight)
		}
	}
}

func TestGenerate_IdentityCoherence(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewSource(3)), ".example.com")

	for i := 0; i < 50; i++ {
		p := g.Generate()

		// The client-hint platform must agree with the user agent.
		platform := p.Headers["Sec-Ch-Ua-Platform"]
		switch {
		case strings.Contains(p.UserAgent, "Windows"):
			if platform != `"Windows"` {
				t.Fatalf("Windows UA with platform hint %s", platform)
			}
		case strings.Contains(p.UserAgent, "Macintosh"):
			if platform != `"macOS"` {
				t.Fatalf("macOS UA with platform hint %s", platform)
			}
		case strings.Contains(p.UserAgent, "Linux"):
			if platform != `"Linux"` {
				t.Fatalf("Linux UA with platform hint %s", platform)
			}
		default:
			t.Fatalf("unrecognized UA: %q", p.UserAgent)
		}

		if p.Headers["Accept-Language"] == "" {
			t.Fatal("missing Accept-Language header")
		}
		if len(p.Overrides.Languages) == 0 {
			t.Fatal("no navigator languages")
		}
	}
}

func TestGenerate_OverrideValuePools(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewSource(11)), ".example.com")

	validConcurrency := map[int]bool{4: true, 8: true, 12: true, 16: true}
	validMemory := map[int]bool{4: true, 8: true}

	for i := 0; i < 50; i++ {
		p := g.Generate()
		if !validConcurrency[p.Overrides.HardwareConcurrency] {
			t.Fatalf("unexpected hardwareConcurrency %d", p.Overrides.HardwareConcurrency)
		}
		if !validMemory[p.Overrides.DeviceMemory] {
			t.Fatalf("unexpected deviceMemory %d", p.Overrides.DeviceMemory)
		}
	}
}

func TestGenerate_SeedCookies(t *testing.T) {
	p := NewGenerator(rand.New(rand.NewSource(5)), ".example.com").Generate()

	if len(p.Cookies) != 3 {
		t.Fatalf("got %d seed cookies, want 3", len(p.Cookies))
	}

	byName := map[string]SeedCookie{}
	for _, c := range p.Cookies {
		byName[c.Name] = c
		if c.Domain != ".example.com" {
			t.Errorf("cookie %s scoped to %q, want .example.com", c.Name, c.Domain)
		}
	}

	if _, ok := byName["CONSENT"]; !ok {
		t.Error("missing CONSENT cookie")
	}
	if !strings.HasPrefix(byName["AEC"].Value, "AUEFqZf") {
		t.Errorf("AEC value %q missing prefix", byName["AEC"].Value)
	}
	if !strings.HasPrefix(byName["NID"].Value, "511=") {
		t.Errorf("NID value %q missing prefix", byName["NID"].Value)
	}
}

func TestGenerate_FreshTokensPerProfile(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewSource(9)), ".example.com")
	a := g.Generate()
	b := g.Generate()

	if a.Cookies[1].Value == b.Cookies[1].Value {
		t.Error("consecutive profiles share an AEC token")
	}
}

func TestGenerate_ConcurrentCallers(t *testing.T) {
	// One Generator serves every search session, so concurrent Generate
	// calls must be safe (run with -race).
	g := NewGenerator(nil, ".example.com")

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				p := g.Generate()
				if p.UserAgent == "" || len(p.Cookies) != 3 {
					t.Error("concurrent Generate returned malformed profile")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestScript_MasksAutomationMarkers(t *testing.T) {
	script := NavigatorOverrides{
		Platform:            "Win32",
		Vendor:              "Google Inc.",
		Languages:           []string{"en-US", "en"},
		HardwareConcurrency: 8,
		DeviceMemory:        8,
	}.Script()

	for _, want := range []string{
		"define('webdriver', undefined)",
		"define('plugins'",
		`["en-US","en"]`,
		`"Win32"`,
		"define('hardwareConcurrency', 8)",
		"define('deviceMemory', 8)",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q", want)
		}
	}
}
