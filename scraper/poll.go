package scraper

import (
	"context"
	"errors"
	"time"
)

// errPollTimeout reports that a polled condition did not become true before
// its deadline. Call sites wrap it into the classified failure appropriate
// for what they were waiting on.
var errPollTimeout = errors.New("condition not met before deadline")

// pollInterval is the fixed backoff between predicate checks.
const pollInterval = 500 * time.Millisecond

// pollUntil repeatedly evaluates pred at a fixed backoff until it returns
// true, the timeout elapses (errPollTimeout), the context is cancelled, or
// pred itself errors.
//
// The consent-dialog and CAPTCHA waits are both instances of this: "check a
// boolean predicate until a deadline, else a classified timeout".
func pollUntil(ctx context.Context, timeout time.Duration, pred func() (bool, error)) error {
	deadline := time.Now().Add(timeout)

	for {
		ok, err := pred()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return errPollTimeout
		}

		select {
		case <-time.After(pollInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
