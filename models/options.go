package models

import (
	"time"
)

// OptionKind discriminates the two option contract categories.
type OptionKind string

const (
	Call OptionKind = "Call"
	Put  OptionKind = "Put"
)

// RawTicker is a single feed record exactly as decoded from the tickers
// payload. Field presence and types are unverified until the adapter runs.
type RawTicker map[string]interface{}

// ChainSnapshot is the result of one bulk fetch from the quote feed: the raw
// per-contract records plus the resolved underlying spot price.
type ChainSnapshot struct {
	Tickers   []RawTicker
	Spot      float64
	FetchedAt time.Time
}

// ContractQuote is one validated options quote. ContractID is the exchange
// symbol and stays stable across polls for the same expiry/strike/kind, which
// is what makes delta joins across polls possible.
type ContractQuote struct {
	ContractID     string     `json:"contract_id"`
	UnderlyingSpot float64    `json:"underlying_spot"`
	Expiry         time.Time  `json:"expiry"`
	Strike         float64    `json:"strike"`
	Kind           OptionKind `json:"option_kind"`
	LastPrice      float64    `json:"last_price"`
	OpenInterest   int64      `json:"open_interest"`
	ObservedAt     time.Time  `json:"observed_at"`
}

// ExpiryWindow holds the one or two expiry dates in scope for a poll. It is
// computed fresh every poll and never persisted.
type ExpiryWindow struct {
	Targets []time.Time `json:"targets"`
}

// Empty reports whether the window selected no expiries.
func (w ExpiryWindow) Empty() bool {
	return len(w.Targets) == 0
}

// Contains reports whether d falls on one of the target expiry dates.
// Only the calendar date participates in the comparison.
func (w ExpiryWindow) Contains(d time.Time) bool {
	dd := DateOnly(d)
	for _, t := range w.Targets {
		if DateOnly(t).Equal(dd) {
			return true
		}
	}
	return false
}

// SnapshotRow is the unit of persistence: one contract with its
// period-over-period delta fields. A nil PreviousPrice or OpenInterestChange
// means "unknown" (no prior history), which is distinct from zero.
type SnapshotRow struct {
	ContractQuote
	PreviousPrice      *float64 `json:"previous_price"`
	OpenInterestChange *int64   `json:"open_interest_change"`
}

// PriorEntry is the per-contract slice of the previous persisted snapshot
// used for delta computation.
type PriorEntry struct {
	Price        float64
	OpenInterest int64
}

// DateOnly truncates t to midnight UTC so values compare by calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
