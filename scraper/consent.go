package scraper

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// consentDialogSelector matches the cookie/consent overlay in its common
// shapes: the Google reject-button id, generic consent ids, aria-labelled
// cookie containers, and bare role=dialog overlays.
const consentDialogSelector = `button[id*="W0wltc"], button[id*="consent"], div[aria-label*="cookie"], div[aria-label*="Cookie"], div[role="dialog"]`

// rejectPhrases are language-tolerant substrings matched against visible
// button text, lowercase.
var rejectPhrases = []string{
	"reject all",
	"refuse all",
	"tout refuser",
	"refuser tout",
	"alle ablehnen",
	"rechazar todo",
}

// dismissConsent waits (bounded) for a consent dialog, clicks the first
// reject control it can identify, and waits (bounded) for the dialog to go
// away. None of the failure modes are errors: a missing dialog, a reject
// control we cannot locate, or a dialog that will not close all leave the
// flow to proceed as-is.
func (s *SearchScraper) dismissConsent(ctx context.Context, page *rod.Page) error {
	appeared := pollUntil(ctx, s.cfg.ConsentTimeout, func() (bool, error) {
		has, _, err := page.Has(consentDialogSelector)
		if err != nil {
			return false, nil
		}
		return has, nil
	})
	if appeared == errPollTimeout {
		slog.Debug("consent: no dialog appeared")
		return nil
	}
	if appeared != nil {
		return appeared // context cancellation
	}

	// Let the dialog finish rendering before poking at it.
	if err := s.human.delay(ctx, time.Second, 2*time.Second); err != nil {
		return err
	}

	reject, found := firstCandidate(
		func() (*rod.Element, error) { return rejectByText(page) },
		func() (*rod.Element, error) { return rejectBySelector(page, `button[aria-label*="refuser"], button[aria-label*="reject"]`) },
		func() (*rod.Element, error) { return rejectBySelector(page, `button.W0wltc, button[class*="reject"], button[class*="refuse"]`) },
	)
	if !found {
		slog.Info("consent: dialog present but no reject control found, proceeding")
		return nil
	}

	if err := reject.Click(proto.InputMouseButtonLeft, 1); err != nil {
		slog.Warn("consent: reject click failed, proceeding", "error", err)
		return nil
	}

	gone := pollUntil(ctx, s.cfg.ConsentTimeout, func() (bool, error) {
		has, _, err := page.Has(consentDialogSelector)
		if err != nil {
			return false, nil
		}
		return !has, nil
	})
	if gone == errPollTimeout {
		slog.Warn("consent: dialog did not disappear after reject, proceeding")
		return nil
	}
	if gone != nil {
		return gone
	}

	return s.human.delay(ctx, time.Second, 2*time.Second)
}

// rejectByText scans visible buttons for any known reject phrase.
func rejectByText(page *rod.Page) (*rod.Element, error) {
	buttons, err := page.Elements("button")
	if err != nil {
		return nil, err
	}
	for _, button := range buttons {
		text, err := button.Text()
		if err != nil {
			continue
		}
		lower := strings.ToLower(text)
		for _, phrase := range rejectPhrases {
			if strings.Contains(lower, phrase) {
				return button, nil
			}
		}
	}
	return nil, nil
}

// rejectBySelector returns the first element matching sel, or (nil, nil).
func rejectBySelector(page *rod.Page, sel string) (*rod.Element, error) {
	has, el, err := page.Has(sel)
	if err != nil || !has {
		return nil, err
	}
	return el, nil
}
