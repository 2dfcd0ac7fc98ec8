package models

import "time"

// ScrapeResponse is the response for both scrape endpoints.
type ScrapeResponse struct {
	// Success indicates whether the scrape completed without errors.
	Success bool `json:"success"`

	// Target echoes the validated scrape input.
	Target ScrapeTarget `json:"target"`

	// Timestamp is when the scrape completed.
	Timestamp time.Time `json:"timestamp"`

	// Title is the document title of the scraped page.
	Title string `json:"title"`

	// SourceURL is the page URL the content was captured from
	// (after redirects; for searches, the results page URL).
	SourceURL string `json:"source_url"`

	// StatusText is "success" on the happy path.
	StatusText string `json:"status_text,omitempty"`

	// ResultStats is the search engine's result-count line
	// (search scrapes only).
	ResultStats string `json:"result_stats,omitempty"`

	// Content is the normalized structured document in the requested format.
	Content string `json:"content"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// CacheStatus indicates whether the response was served from cache.
	// Values: "hit", "miss", or empty (caching not requested).
	CacheStatus string `json:"cache_status,omitempty"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// SessionMs is the time spent inside the browser session
	// (navigation, waits, capture).
	SessionMs int64 `json:"session_ms"`

	// StructureMs is the time spent structuring the captured markup.
	StructureMs int64 `json:"structure_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"` // "healthy"
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}
