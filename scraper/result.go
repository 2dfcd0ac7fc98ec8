package scraper

import (
	"time"

	"github.com/serpscout/serpscout/models"
)

// ScrapeResult is the unified return type for both orchestrators. Nothing
// in it persists beyond the call that produced it; durability is the
// caller's concern.
type ScrapeResult struct {
	// Target is the validated input this result answers.
	Target models.ScrapeTarget

	// Timestamp is when the scrape completed.
	Timestamp time.Time

	// Title is the document title at capture time.
	Title string

	// SourceURL is the page URL the content was captured from, after any
	// redirects.
	SourceURL string

	// StatusText is "success" on the happy path.
	StatusText string

	// ResultStats is the engine's result-count line (search scrapes only).
	ResultStats string

	// Content is the normalized structured document.
	Content string

	// SessionMs and StructureMs are phase durations recorded by the
	// orchestrator: time inside the browser session, and time spent
	// structuring the captured markup.
	SessionMs   int64
	StructureMs int64
}
