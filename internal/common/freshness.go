package common

import "time"

// Freshness windows for cached market data
const (
	FreshnessQuote   = 60 * time.Second
	FreshnessHistory = 5 * time.Minute
)

// IsFresh returns true if the given timestamp is within the TTL as of now.
// A zero timestamp is never fresh.
func IsFresh(updated, now time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return now.Sub(updated) <= ttl
}
