package fingerprint

// identity bundles the attributes that must stay mutually consistent for a
// single browser persona. Mixing values across identities (e.g. a Windows
// user agent with a macOS client-hint platform) is a classic bot tell, so
// the generator always draws a whole identity at once.
type identity struct {
	userAgent       string
	platform        string // navigator.platform
	vendor          string // navigator.vendor
	secChUa         string
	secChUaPlatform string // value for Sec-Ch-Ua-Platform, without quotes
	platformVersion string
	arch            string
	languages       []string
	acceptLanguage  string
}

// identities is the rotating pool of plausible Chrome personas.
var identities = []identity{
	{
		userAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
		platform:        "Win32",
		vendor:          "Google Inc.",
		secChUa:         `"Google Chrome";v="131", "Chromium";v="131", "Not_A Brand";v="24"`,
		secChUaPlatform: "Windows",
		platformVersion: "10.0.0",
		arch:            "x86",
		languages:       []string{"en-US", "en"},
		acceptLanguage:  "en-US,en;q=0.9",
	},
	{
		userAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36",
		platform:        "Win32",
		vendor:          "Google Inc.",
		secChUa:         `"Chromium";v="130", "Google Chrome";v="130", "Not?A_Brand";v="99"`,
		secChUaPlatform: "Windows",
		platformVersion: "15.0.0",
		arch:            "x86",
		languages:       []string{"fr-FR", "fr", "en-US", "en"},
		acceptLanguage:  "fr-FR,fr;q=0.9,en-US;q=0.8,en;q=0.7",
	},
	{
		userAgent:       "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
		platform:        "MacIntel",
		vendor:          "Google Inc.",
		secChUa:         `"Google Chrome";v="131", "Chromium";v="131", "Not_A Brand";v="24"`,
		secChUaPlatform: "macOS",
		platformVersion: "14.6.1",
		arch:            "arm",
		languages:       []string{"en-US", "en"},
		acceptLanguage:  "en-US,en;q=0.9",
	},
	{
		userAgent:       "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36",
		platform:        "Linux x86_64",
		vendor:          "Google Inc.",
		secChUa:         `"Chromium";v="130", "Google Chrome";v="130", "Not?A_Brand";v="99"`,
		secChUaPlatform: "Linux",
		platformVersion: "6.8.0",
		arch:            "x86",
		languages:       []string{"en-GB", "en-US", "en"},
		acceptLanguage:  "en-GB,en-US;q=0.9,en;q=0.8",
	},
}
