package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/models"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/providers"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/structures"
)

// Limiter evaluates sliding-window policies on top of a Store and owns
// the commit/prune bookkeeping around them.
type Limiter struct {
	store   Store
	logger  providers.Logger
	metrics providers.MetricsProviderInterface

	mu      sync.Mutex
	pruners map[string]*rate.Sometimes
}

func NewLimiter(store Store, logger providers.Logger, metrics providers.MetricsProviderInterface) *Limiter {
	return &Limiter{
		store:   store,
		logger:  logger,
		metrics: metrics,
		pruners: make(map[string]*rate.Sometimes),
	}
}

// Check loads the live entry for (scope, key) and evaluates the policy:
// cooldown first, then the window cap. A store failure fails closed with
// a retryable storage-unavailable verdict. The returned entry is what the
// caller should commit once the guarded action succeeds.
func (l *Limiter) Check(ctx context.Context, scope, key string, now time.Time, p structures.LimitPolicy) (models.RateLimitEntry, *models.Verdict) {
	start := time.Now()
	entry, err := l.store.Get(ctx, scope, key, now, p.Window)
	l.metrics.ObserveStoreDuration("get", time.Since(start))
	if err != nil {
		l.logger.Errorf(providers.TypeApp, "rate store get failed (scope=%s): %s", scope, err)
		return entry, models.RejectRetryable(models.ReasonStorageUnavailable,
			"service is temporarily unavailable, please try again")
	}

	if p.Cooldown > 0 && entry.LastSeen != nil {
		if since := now.Sub(*entry.LastSeen); since < p.Cooldown {
			wait := p.Cooldown - since
			return entry, models.Reject(models.ReasonRateLimitCooldown,
				fmt.Sprintf("please wait %s before trying again", wait.Round(time.Second)))
		}
	}
	if entry.Count >= p.MaxCount {
		return entry, models.Reject(models.ReasonRateLimitCap,
			"daily limit reached, please come back tomorrow")
	}
	return entry, nil
}

// CheckPair evaluates the IP scope and the fingerprint scope together;
// the stricter rejection wins (cap over cooldown), defending against
// both single-IP abuse and multi-IP same-device abuse. On success both
// entries come back for commit.
func (l *Limiter) CheckPair(ctx context.Context, ipScope, ipKey, fpScope, fpKey string, now time.Time, p structures.LimitPolicy) ([2]models.RateLimitEntry, *models.Verdict) {
	ipEntry, ipVerdict := l.Check(ctx, ipScope, ipKey, now, p)
	fpEntry, fpVerdict := l.Check(ctx, fpScope, fpKey, now, p)
	return [2]models.RateLimitEntry{ipEntry, fpEntry}, stricter(ipVerdict, fpVerdict)
}

// stricter orders verdicts: store outage first, then daily cap, then
// cooldown.
func stricter(a, b *models.Verdict) *models.Verdict {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	rank := func(v *models.Verdict) int {
		switch v.Reason {
		case models.ReasonStorageUnavailable:
			return 3
		case models.ReasonRateLimitCap:
			return 2
		default:
			return 1
		}
	}
	if rank(b) > rank(a) {
		return b
	}
	return a
}

// CommitBestEffort bumps and upserts an entry after the guarded action
// succeeded. Failures are logged and swallowed: bookkeeping must never
// fail a user action that already went through.
func (l *Limiter) CommitBestEffort(ctx context.Context, entry models.RateLimitEntry, now time.Time) {
	start := time.Now()
	err := l.store.Commit(ctx, entry.Bump(now))
	l.metrics.ObserveStoreDuration("commit", time.Since(start))
	if err != nil {
		l.logger.Warnf(providers.TypeApp, "rate store commit failed (scope=%s): %s", entry.Scope, err)
	}
}

// Prune removes entries in scope whose window has fully elapsed.
func (l *Limiter) Prune(ctx context.Context, scope string, window time.Duration, now time.Time) {
	removed, err := l.store.Prune(ctx, scope, now.Add(-window))
	if err != nil {
		l.logger.Warnf(providers.TypeApp, "rate store prune failed (scope=%s): %s", scope, err)
		return
	}
	if removed > 0 {
		l.metrics.AddPrunedEntries(scope, removed)
		l.logger.Debugf(providers.TypeApp, "pruned %d expired entries from %s", removed, scope)
	}
}

// MaybePrune runs Prune at most once per cleanupInterval per scope,
// amortizing cleanup over request traffic instead of relying solely on
// the janitor.
func (l *Limiter) MaybePrune(ctx context.Context, scope string, window, cleanupInterval time.Duration, now time.Time) {
	l.mu.Lock()
	s, ok := l.pruners[scope]
	if !ok {
		s = &rate.Sometimes{Interval: cleanupInterval}
		l.pruners[scope] = s
	}
	l.mu.Unlock()

	s.Do(func() {
		l.Prune(ctx, scope, window, now)
	})
}
