// Package ratelimit implements scoped sliding-window counters over a
// shared external store, so enforcement holds across multiple server
// instances. Counters are best-effort: reads and writes are not atomic,
// and concurrent bursts from one key can under-count. Deterrence, not
// billing.
package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/models"
)

// Scopes partition independent counters per action and identity type.
// The dedupe scopes reuse the same machinery with maxCount=1, turning
// "has this fingerprint already submitted this content" into a counter
// lookup.
const (
	ScopeSubmissionByIP = "submission-by-ip"
	ScopeSubmissionByFP = "submission-by-fingerprint"
	ScopeReportByIP     = "report-by-ip"
	ScopeReportByFP     = "report-by-fingerprint"
	ScopeWaitlistByIP   = "waitlist-by-ip"
	ScopeWaitlistByFP   = "waitlist-by-fingerprint"
	ScopeDedupeFeature  = "dedupe-feature"
	ScopeDedupeReport   = "dedupe-report"
	ScopeDedupeWaitlist = "dedupe-waitlist"
)

// Scopes lists every registered scope with its window, for prune sweeps.
type ScopeWindow struct {
	Scope  string
	Window time.Duration
}

// ErrStoreUnavailable wraps any backend failure on the read path. The
// guard fails closed on it: an outage must not become a rate-limit
// bypass.
var ErrStoreUnavailable = errors.New("rate limit store unavailable")

// Store is the shared persistence behind every limiter scope.
type Store interface {
	// Get returns the live entry for (scope, key). A missing entry, or
	// one whose window has elapsed, comes back as a fresh zero entry
	// with FirstSeen=now.
	Get(ctx context.Context, scope, key string, now time.Time, window time.Duration) (models.RateLimitEntry, error)

	// Commit upserts the entry as a whole. Called only after the guarded
	// action succeeded.
	Commit(ctx context.Context, entry models.RateLimitEntry) error

	// Prune deletes entries in scope whose FirstSeen predates cutoff and
	// returns how many were removed.
	Prune(ctx context.Context, scope string, cutoff time.Time) (int, error)
}
