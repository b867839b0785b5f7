package models

import "time"

// RateLimitEntry is one sliding-window counter for a (scope, key) pair.
// An entry whose FirstSeen predates the scope's window is logically
// absent: stores return a fresh zero entry in its place.
type RateLimitEntry struct {
	Scope     string     `json:"scope"`
	Key       string     `json:"key"`
	Count     int        `json:"count"`
	FirstSeen time.Time  `json:"first_seen"`
	LastSeen  *time.Time `json:"last_seen,omitempty"`
}

// NewRateLimitEntry returns the zero counter for a key first observed now.
func NewRateLimitEntry(scope, key string, now time.Time) RateLimitEntry {
	return RateLimitEntry{Scope: scope, Key: key, FirstSeen: now}
}

// Expired reports whether the entry's window has elapsed at now.
func (e RateLimitEntry) Expired(now time.Time, window time.Duration) bool {
	return now.Sub(e.FirstSeen) > window
}

// Bump returns a copy with the counter incremented and LastSeen set to
// now. Entries are value types: the store upserts the result as a whole,
// so no error path leaves a partially written counter.
func (e RateLimitEntry) Bump(now time.Time) RateLimitEntry {
	e.Count++
	ts := now
	e.LastSeen = &ts
	return e
}
