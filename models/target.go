package models

import (
	"net/url"
	"strings"
)

// TargetKind discriminates the two scrape inputs.
type TargetKind string

const (
	TargetURL     TargetKind = "url"
	TargetKeyword TargetKind = "keyword"
)

// ScrapeTarget is the immutable input to one scrape: either a URL to fetch
// or a keyword to search for.
type ScrapeTarget struct {
	Kind  TargetKind `json:"kind"`
	Value string     `json:"value"`
}

// URLTarget validates rawURL and returns a URL-kind target.
// Only absolute http/https URLs with a host are accepted.
func URLTarget(rawURL string) (ScrapeTarget, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ScrapeTarget{}, NewScrapeError(ErrCodeInvalidTarget, "malformed URL", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ScrapeTarget{}, NewScrapeError(ErrCodeInvalidTarget, "URL must be absolute http(s)", nil)
	}
	return ScrapeTarget{Kind: TargetURL, Value: rawURL}, nil
}

// KeywordTarget trims and validates keyword and returns a keyword-kind target.
func KeywordTarget(keyword string) (ScrapeTarget, error) {
	trimmed := strings.TrimSpace(keyword)
	if trimmed == "" {
		return ScrapeTarget{}, NewScrapeError(ErrCodeInvalidTarget, "keyword must not be empty", nil)
	}
	return ScrapeTarget{Kind: TargetKeyword, Value: trimmed}, nil
}
