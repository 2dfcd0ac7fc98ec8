package structure

import (
	"log/slog"
	nurl "net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// minArticleLength is the minimum extracted text length (in characters) for
// readability output to be considered valid. Below this we assume the
// algorithm missed the main content and keep the full document.
const minArticleLength = 50

// ExtractArticle runs the Mozilla Readability algorithm on rawHTML and
// returns the main-content HTML, for callers who want the structurer to see
// the article body only.
//
// Fallback behaviour (a scrape must never fail just because readability
// choked): on URL parse errors, extraction errors, or too-short output the
// original rawHTML is returned and ok is false.
func ExtractArticle(rawHTML string, sourceURL string) (content string, ok bool) {
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		slog.Warn("readability: invalid source URL, keeping full document",
			"url", sourceURL, "error", err,
		)
		return rawHTML, false
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		slog.Warn("readability: extraction failed, keeping full document",
			"url", sourceURL, "error", err,
		)
		return rawHTML, false
	}

	if len(strings.TrimSpace(article.TextContent)) < minArticleLength {
		slog.Warn("readability: extracted content too short, keeping full document",
			"url", sourceURL, "length", len(article.TextContent),
		)
		return rawHTML, false
	}

	return article.Content, true
}
