package service

import "time"

// ExtrapolateAge computes an always-current "seconds since last signal" from
// a captured (age, capture time) pair without re-fetching: the UI keeps its
// "N minutes ago" counter ticking between reconciliation passes.
//
// Pure function: monotonically non-decreasing in elapsed wall-clock time,
// identity when no time has elapsed. A nil captured age means the device has
// never reported and stays nil.
func ExtrapolateAge(ageSec *int64, capturedAtMs int64, now time.Time) *int64 {
	if ageSec == nil {
		return nil
	}

	elapsed := (now.UnixMilli() - capturedAtMs) / 1000
	if elapsed < 0 {
		elapsed = 0
	}

	age := *ageSec + elapsed
	if age < 0 {
		age = 0
	}

	return &age
}
