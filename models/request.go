package models

// WebpageRequest is the payload for POST /api/v1/scrape/webpage.
type WebpageRequest struct {
	// URL is the target page to scrape. Required.
	URL string `json:"url" binding:"required,url"`

	// OutputFormat controls the structured output rendering.
	// Allowed: "text" (default), "html", "markdown".
	OutputFormat string `json:"output_format,omitempty" binding:"omitempty,oneof=text html markdown"`

	// ExtractMode controls the content handed to the structurer.
	// "structured" (default): structure the full rendered document body.
	// "article": run readability first and structure the main article only.
	ExtractMode string `json:"extract_mode,omitempty" binding:"omitempty,oneof=structured article"`

	// CSSSelector optionally scopes the captured markup before structuring.
	// When set, only the matched elements' outer HTML is structured.
	CSSSelector string `json:"css_selector,omitempty"`

	// MaxAge enables the response cache: a cached result younger than this
	// many milliseconds is returned instead of scraping. 0 disables caching.
	MaxAge int `json:"max_age_ms,omitempty" binding:"omitempty,min=0"`
}

// Defaults applies default values to unset fields.
func (r *WebpageRequest) Defaults() {
	if r.OutputFormat == "" {
		r.OutputFormat = "text"
	}
	if r.ExtractMode == "" {
		r.ExtractMode = "structured"
	}
}

// SearchRequest is the payload for POST /api/v1/scrape/search.
type SearchRequest struct {
	// Keyword is the search query. Required, must be non-empty after trimming.
	Keyword string `json:"keyword" binding:"required"`

	// OutputFormat controls the structured output rendering.
	// Allowed: "text" (default), "html", "markdown".
	OutputFormat string `json:"output_format,omitempty" binding:"omitempty,oneof=text html markdown"`
}

// Defaults applies default values to unset fields.
func (r *SearchRequest) Defaults() {
	if r.OutputFormat == "" {
		r.OutputFormat = "text"
	}
}
