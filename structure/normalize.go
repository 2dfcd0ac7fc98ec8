package structure

import (
	"regexp"
	"strings"
)

var (
	reNewlineRuns = regexp.MustCompile(`\n{3,}`)
	reSpaceRuns   = regexp.MustCompile(`[^\S\n]+`)
)

// Normalize applies the final whitespace cleanup to a structured document:
// newline runs of three or more collapse to two, space/tab runs collapse to
// a single space, every line is trimmed, and empty lines are dropped.
//
// Normalize is idempotent: running it on already-normalized input returns
// the input unchanged.
func Normalize(text string) string {
	text = reNewlineRuns.ReplaceAllString(text, "\n\n")
	text = reSpaceRuns.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
