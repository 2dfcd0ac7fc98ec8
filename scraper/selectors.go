package scraper

import "github.com/go-rod/rod"

// firstSelector tries each selector in order and returns the first one that
// currently matches an element on the page. It never waits: a selector
// either matches now or the next candidate is tried.
func firstSelector(page *rod.Page, candidates []string) (string, *rod.Element, bool) {
	for _, sel := range candidates {
		has, el, err := page.Has(sel)
		if err != nil {
			continue
		}
		if has {
			return sel, el, true
		}
	}
	return "", nil, false
}

// firstCandidate runs ordered lookups and returns the first element found.
// A lookup signals "no match" by returning (nil, nil); errors are treated
// the same so one broken lookup does not stop the fallbacks behind it.
func firstCandidate(lookups ...func() (*rod.Element, error)) (*rod.Element, bool) {
	for _, lookup := range lookups {
		el, err := lookup()
		if err != nil || el == nil {
			continue
		}
		return el, true
	}
	return nil, false
}
