package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/models"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/providers"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/structures"
)

type nopLogger struct {
	warns int
}

func (l *nopLogger) Errorf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (l *nopLogger) Warnf(_ providers.TypeEnum, _ string, _ ...interface{}) { l.warns++ }
func (l *nopLogger) Debugf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (l *nopLogger) Infof(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (l *nopLogger) Fatalf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (l *nopLogger) Close()                                                  {}

type nopMetrics struct {
	pruned map[string]int
}

func (m *nopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *nopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *nopMetrics) IncDecision(_, _ string)                          {}
func (m *nopMetrics) ObserveStoreDuration(_ string, _ time.Duration)   {}
func (m *nopMetrics) IncCacheHits()                                    {}
func (m *nopMetrics) IncCacheMisses()                                  {}
func (m *nopMetrics) AddPrunedEntries(scope string, count int) {
	if m.pruned == nil {
		m.pruned = make(map[string]int)
	}
	m.pruned[scope] += count
}

type memStore struct {
	entries   map[string]models.RateLimitEntry
	getErr    error
	commitErr error
	prunes    int
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[string]models.RateLimitEntry)}
}

func (s *memStore) Get(_ context.Context, scope, key string, now time.Time, window time.Duration) (models.RateLimitEntry, error) {
	if s.getErr != nil {
		return models.NewRateLimitEntry(scope, key, now), s.getErr
	}
	entry, ok := s.entries[scope+":"+key]
	if !ok || entry.Expired(now, window) {
		return models.NewRateLimitEntry(scope, key, now), nil
	}
	return entry, nil
}

func (s *memStore) Commit(_ context.Context, entry models.RateLimitEntry) error {
	if s.commitErr != nil {
		return s.commitErr
	}
	s.entries[entry.Scope+":"+entry.Key] = entry
	return nil
}

func (s *memStore) Prune(_ context.Context, scope string, cutoff time.Time) (int, error) {
	s.prunes++
	removed := 0
	for k, e := range s.entries {
		if e.Scope == scope && e.FirstSeen.Before(cutoff) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed, nil
}

func newTestLimiter(store Store) *Limiter {
	return NewLimiter(store, &nopLogger{}, &nopMetrics{})
}

var testPolicy = structures.LimitPolicy{
	Window:   24 * time.Hour,
	Cooldown: 10 * time.Second,
	MaxCount: 3,
}

func TestCheck_FreshKeyPasses(t *testing.T) {
	l := newTestLimiter(newMemStore())
	now := time.Now()

	entry, verdict := l.Check(context.Background(), ScopeSubmissionByIP, "ip-1", now, testPolicy)
	assert.Nil(t, verdict)
	assert.Equal(t, 0, entry.Count)
	assert.Equal(t, "ip-1", entry.Key)
}

func TestCheck_CooldownRejects(t *testing.T) {
	store := newMemStore()
	l := newTestLimiter(store)
	now := time.Now()

	entry, verdict := l.Check(context.Background(), ScopeSubmissionByIP, "ip-1", now, testPolicy)
	require.Nil(t, verdict)
	l.CommitBestEffort(context.Background(), entry, now)

	_, verdict = l.Check(context.Background(), ScopeSubmissionByIP, "ip-1", now.Add(2*time.Second), testPolicy)
	require.NotNil(t, verdict)
	assert.Equal(t, models.ReasonRateLimitCooldown, verdict.Reason)
	assert.False(t, verdict.Retryable)
	assert.Contains(t, verdict.Message, "wait")
}

func TestCheck_CooldownElapsedPasses(t *testing.T) {
	store := newMemStore()
	l := newTestLimiter(store)
	now := time.Now()

	entry, verdict := l.Check(context.Background(), ScopeSubmissionByIP, "ip-1", now, testPolicy)
	require.Nil(t, verdict)
	l.CommitBestEffort(context.Background(), entry, now)

	_, verdict = l.Check(context.Background(), ScopeSubmissionByIP, "ip-1", now.Add(11*time.Second), testPolicy)
	assert.Nil(t, verdict)
}

func TestCheck_CapRejectsAfterMaxCount(t *testing.T) {
	store := newMemStore()
	l := newTestLimiter(store)
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < testPolicy.MaxCount; i++ {
		at := now.Add(time.Duration(i) * time.Minute)
		entry, verdict := l.Check(ctx, ScopeSubmissionByIP, "ip-1", at, testPolicy)
		require.Nil(t, verdict, "attempt %d should pass", i)
		l.CommitBestEffort(ctx, entry, at)
	}

	_, verdict := l.Check(ctx, ScopeSubmissionByIP, "ip-1", now.Add(time.Hour), testPolicy)
	require.NotNil(t, verdict)
	assert.Equal(t, models.ReasonRateLimitCap, verdict.Reason)
}

func TestCheck_WindowElapsedResetsCounter(t *testing.T) {
	store := newMemStore()
	l := newTestLimiter(store)
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < testPolicy.MaxCount; i++ {
		at := now.Add(time.Duration(i) * time.Minute)
		entry, _ := l.Check(ctx, ScopeSubmissionByIP, "ip-1", at, testPolicy)
		l.CommitBestEffort(ctx, entry, at)
	}

	later := now.Add(testPolicy.Window + time.Minute)
	entry, verdict := l.Check(ctx, ScopeSubmissionByIP, "ip-1", later, testPolicy)
	assert.Nil(t, verdict)
	assert.Equal(t, 0, entry.Count)
}

func TestCheck_StoreFailureFailsClosed(t *testing.T) {
	store := newMemStore()
	store.getErr = errors.New("connection refused")
	l := newTestLimiter(store)

	_, verdict := l.Check(context.Background(), ScopeSubmissionByIP, "ip-1", time.Now(), testPolicy)
	require.NotNil(t, verdict)
	assert.Equal(t, models.ReasonStorageUnavailable, verdict.Reason)
	assert.True(t, verdict.Retryable)
}

func TestCheck_NoCooldownPolicy(t *testing.T) {
	store := newMemStore()
	l := newTestLimiter(store)
	ctx := context.Background()
	now := time.Now()
	p := structures.LimitPolicy{Window: time.Hour, MaxCount: 2}

	entry, verdict := l.Check(ctx, ScopeDedupeFeature, "k", now, p)
	require.Nil(t, verdict)
	l.CommitBestEffort(ctx, entry, now)

	_, verdict = l.Check(ctx, ScopeDedupeFeature, "k", now.Add(time.Millisecond), p)
	assert.Nil(t, verdict)
}

func TestCheckPair_StricterVerdictWins(t *testing.T) {
	store := newMemStore()
	l := newTestLimiter(store)
	ctx := context.Background()
	now := time.Now()

	// IP key is at the cap, fingerprint key is only in cooldown.
	for i := 0; i < testPolicy.MaxCount; i++ {
		at := now.Add(time.Duration(i) * time.Minute)
		entry, _ := l.Check(ctx, ScopeSubmissionByIP, "ip-1", at, testPolicy)
		l.CommitBestEffort(ctx, entry, at)
	}
	fpEntry, _ := l.Check(ctx, ScopeSubmissionByFP, "fp-1", now, testPolicy)
	l.CommitBestEffort(ctx, fpEntry, now.Add(time.Hour))

	_, verdict := l.CheckPair(ctx,
		ScopeSubmissionByIP, "ip-1",
		ScopeSubmissionByFP, "fp-1",
		now.Add(time.Hour+time.Second), testPolicy)
	require.NotNil(t, verdict)
	assert.Equal(t, models.ReasonRateLimitCap, verdict.Reason)
}

func TestCheckPair_BothPass(t *testing.T) {
	l := newTestLimiter(newMemStore())

	entries, verdict := l.CheckPair(context.Background(),
		ScopeSubmissionByIP, "ip-1",
		ScopeSubmissionByFP, "fp-1",
		time.Now(), testPolicy)
	assert.Nil(t, verdict)
	assert.Equal(t, ScopeSubmissionByIP, entries[0].Scope)
	assert.Equal(t, ScopeSubmissionByFP, entries[1].Scope)
}

func TestStricter_Ordering(t *testing.T) {
	outage := models.RejectRetryable(models.ReasonStorageUnavailable, "")
	capped := models.Reject(models.ReasonRateLimitCap, "")
	cooldown := models.Reject(models.ReasonRateLimitCooldown, "")

	assert.Equal(t, outage, stricter(cooldown, outage))
	assert.Equal(t, outage, stricter(outage, capped))
	assert.Equal(t, capped, stricter(cooldown, capped))
	assert.Equal(t, capped, stricter(capped, nil))
	assert.Nil(t, stricter(nil, nil))
}

func TestCommitBestEffort_IncrementsAndSetsLastSeen(t *testing.T) {
	store := newMemStore()
	l := newTestLimiter(store)
	now := time.Now()

	entry, _ := l.Check(context.Background(), ScopeReportByIP, "ip-1", now, testPolicy)
	l.CommitBestEffort(context.Background(), entry, now)

	stored := store.entries[ScopeReportByIP+":ip-1"]
	assert.Equal(t, 1, stored.Count)
	require.NotNil(t, stored.LastSeen)
	assert.Equal(t, now, *stored.LastSeen)
}

func TestCommitBestEffort_SwallowsStoreFailure(t *testing.T) {
	store := newMemStore()
	store.commitErr = errors.New("disk full")
	logger := &nopLogger{}
	l := NewLimiter(store, logger, &nopMetrics{})

	entry := models.NewRateLimitEntry(ScopeReportByIP, "ip-1", time.Now())
	l.CommitBestEffort(context.Background(), entry, time.Now())
	assert.Equal(t, 1, logger.warns)
}

func TestPrune_RemovesExpiredOnly(t *testing.T) {
	store := newMemStore()
	metrics := &nopMetrics{}
	l := NewLimiter(store, &nopLogger{}, metrics)
	ctx := context.Background()
	now := time.Now()

	old, _ := l.Check(ctx, ScopeDedupeFeature, "old", now.Add(-48*time.Hour), testPolicy)
	l.CommitBestEffort(ctx, old, now.Add(-48*time.Hour))
	fresh, _ := l.Check(ctx, ScopeDedupeFeature, "fresh", now, testPolicy)
	l.CommitBestEffort(ctx, fresh, now)

	l.Prune(ctx, ScopeDedupeFeature, 24*time.Hour, now)

	assert.Len(t, store.entries, 1)
	assert.Equal(t, 1, metrics.pruned[ScopeDedupeFeature])
}

func TestMaybePrune_ThrottledPerScope(t *testing.T) {
	store := newMemStore()
	l := newTestLimiter(store)
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 5; i++ {
		l.MaybePrune(ctx, ScopeDedupeFeature, 24*time.Hour, time.Hour, now)
	}
	assert.Equal(t, 1, store.prunes)

	// A different scope gets its own throttle.
	l.MaybePrune(ctx, ScopeDedupeReport, 24*time.Hour, time.Hour, now)
	assert.Equal(t, 2, store.prunes)
}
