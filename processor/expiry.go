package processor

import (
	"fmt"
	"sort"
	"time"

	"github.com/113rajababu113-wq/eth-options-data-pipeline/models"
)

// ExpiryPolicy names one of the two supported expiry-selection rules. The
// deployed policy is fixed per deployment through configuration; the two are
// never mixed within a poll.
type ExpiryPolicy string

const (
	// PolicyWeeklyWindow selects Friday expiries only: W1 is the first
	// active Friday preceded by at least two other active expiries (falling
	// back to the earliest active Friday), W2 the first Friday after W1.
	PolicyWeeklyWindow ExpiryPolicy = "weekly_window"

	// PolicyNearestTwo selects the two earliest active expiries regardless
	// of weekday.
	PolicyNearestTwo ExpiryPolicy = "nearest_two"
)

const weeklySettlementDay = time.Friday

// ValidPolicy reports whether p names a supported expiry-selection policy.
func ValidPolicy(p ExpiryPolicy) bool {
	return p == PolicyWeeklyWindow || p == PolicyNearestTwo
}

// SelectWindow chooses the 1-2 target expiry dates for the current poll. It
// is a pure function of its inputs: the expiries slice is neither mutated nor
// relied on for ordering, so repeated calls with the same set of dates and
// the same today always produce the same window. An empty window means no
// expiry on or after today exists (or, under the weekly policy, no active
// Friday exists).
func SelectWindow(policy ExpiryPolicy, today time.Time, expiries []time.Time) (models.ExpiryWindow, error) {
	if !ValidPolicy(policy) {
		return models.ExpiryWindow{}, fmt.Errorf("unknown expiry policy %q", policy)
	}

	active := activeExpiries(today, expiries)
	if len(active) == 0 {
		return models.ExpiryWindow{}, nil
	}

	switch policy {
	case PolicyNearestTwo:
		return nearestTwoWindow(active), nil
	default:
		return weeklyWindow(active), nil
	}
}

// activeExpiries returns the distinct expiry dates on or after today,
// date-normalized and sorted ascending.
func activeExpiries(today time.Time, expiries []time.Time) []time.Time {
	cutoff := models.DateOnly(today)
	seen := make(map[time.Time]struct{}, len(expiries))
	active := make([]time.Time, 0, len(expiries))
	for _, e := range expiries {
		d := models.DateOnly(e)
		if d.Before(cutoff) {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		active = append(active, d)
	}
	sort.Slice(active, func(i, j int) bool { return active[i].Before(active[j]) })
	return active
}

func weeklyWindow(active []time.Time) models.ExpiryWindow {
	var fridays []time.Time
	for _, d := range active {
		if d.Weekday() == weeklySettlementDay {
			fridays = append(fridays, d)
		}
	}
	if len(fridays) == 0 {
		return models.ExpiryWindow{}
	}

	// W1 is the first Friday with at least two active expiries strictly
	// before it. active is sorted, so the count is just the index of the
	// first date not before the Friday.
	var w1 time.Time
	for _, fri := range fridays {
		count := sort.Search(len(active), func(i int) bool { return !active[i].Before(fri) })
		if count >= 2 {
			w1 = fri
			break
		}
	}
	if w1.IsZero() {
		w1 = fridays[0]
	}

	targets := []time.Time{w1}
	for _, fri := range fridays {
		if fri.After(w1) {
			targets = append(targets, fri)
			break
		}
	}
	return models.ExpiryWindow{Targets: targets}
}

func nearestTwoWindow(active []time.Time) models.ExpiryWindow {
	targets := []time.Time{active[0]}
	if len(active) > 1 {
		targets = append(targets, active[1])
	}
	return models.ExpiryWindow{Targets: targets}
}
