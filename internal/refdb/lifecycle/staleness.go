package lifecycle

import "time"

// Stale reports whether a snapshot fetched at fetchedAt has exceeded the
// age limit as of now. A snapshot exactly at the limit is not yet stale.
func Stale(fetchedAt time.Time, ageLimit time.Duration, now time.Time) bool {
	return now.Sub(fetchedAt) > ageLimit
}

// AgeLimitDays converts the configured whole-day limit into a duration.
func AgeLimitDays(days int) time.Duration {
	return time.Duration(days) * 24 * time.Hour
}
