package processor

import (
	"errors"
	"fmt"
)

// Poll-level failures. Each one ends the current poll early; per-record
// failures are handled locally and never surface here.
var (
	// ErrFeedUnavailable indicates the quote feed could not be reached or
	// returned a non-success status. No rows are produced.
	ErrFeedUnavailable = errors.New("quote feed unavailable")

	// ErrEmptyExpirySet indicates no expiry date on or after today was found.
	// The poll ends cleanly with nothing to do.
	ErrEmptyExpirySet = errors.New("no active expiry dates")

	// ErrStoreUnavailable indicates the snapshot store rejected the append.
	// The computed rows are dropped; the next poll re-derives everything.
	ErrStoreUnavailable = errors.New("snapshot store unavailable")
)

// MalformedQuoteError describes a single feed record that failed adaptation.
// It is counted and skipped, never fatal to the poll.
type MalformedQuoteError struct {
	Symbol string
	Reason string
}

func (e *MalformedQuoteError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("malformed quote: %s", e.Reason)
	}
	return fmt.Sprintf("malformed quote %s: %s", e.Symbol, e.Reason)
}
