package ratelimit

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/models"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := NewSQLiteStore(db)
	require.NoError(t, err)
	return store
}

func TestSQLiteStore_GetMissingReturnsFresh(t *testing.T) {
	store := newTestSQLiteStore(t)
	now := time.Now()

	entry, err := store.Get(context.Background(), ScopeSubmissionByIP, "k", now, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 0, entry.Count)
	assert.Equal(t, now, entry.FirstSeen)
	assert.Nil(t, entry.LastSeen)
}

func TestSQLiteStore_CommitThenGetRoundTrip(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	now := time.Now()

	entry := models.NewRateLimitEntry(ScopeSubmissionByIP, "k", now).Bump(now)
	require.NoError(t, store.Commit(ctx, entry))

	got, err := store.Get(ctx, ScopeSubmissionByIP, "k", now.Add(time.Minute), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Count)
	assert.Equal(t, now.UnixMilli(), got.FirstSeen.UnixMilli())
	require.NotNil(t, got.LastSeen)
	assert.Equal(t, now.UnixMilli(), got.LastSeen.UnixMilli())
}

func TestSQLiteStore_CommitUpserts(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	now := time.Now()

	entry := models.NewRateLimitEntry(ScopeSubmissionByIP, "k", now).Bump(now)
	require.NoError(t, store.Commit(ctx, entry))
	entry = entry.Bump(now.Add(time.Minute))
	require.NoError(t, store.Commit(ctx, entry))

	got, err := store.Get(ctx, ScopeSubmissionByIP, "k", now.Add(2*time.Minute), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Count)
}

func TestSQLiteStore_ExpiredEntryComesBackFresh(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	now := time.Now()

	entry := models.NewRateLimitEntry(ScopeSubmissionByIP, "k", now).Bump(now)
	require.NoError(t, store.Commit(ctx, entry))

	got, err := store.Get(ctx, ScopeSubmissionByIP, "k", now.Add(2*time.Hour), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Count)
}

func TestSQLiteStore_ScopesAreIsolated(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	now := time.Now()

	entry := models.NewRateLimitEntry(ScopeSubmissionByIP, "k", now).Bump(now)
	require.NoError(t, store.Commit(ctx, entry))

	got, err := store.Get(ctx, ScopeReportByIP, "k", now, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Count)
}

func TestSQLiteStore_PruneRemovesOldEntriesInScope(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	now := time.Now()

	old := models.NewRateLimitEntry(ScopeDedupeFeature, "old", now.Add(-48*time.Hour))
	require.NoError(t, store.Commit(ctx, old.Bump(now.Add(-48*time.Hour))))
	fresh := models.NewRateLimitEntry(ScopeDedupeFeature, "fresh", now)
	require.NoError(t, store.Commit(ctx, fresh.Bump(now)))
	other := models.NewRateLimitEntry(ScopeDedupeReport, "old", now.Add(-48*time.Hour))
	require.NoError(t, store.Commit(ctx, other.Bump(now.Add(-48*time.Hour))))

	removed, err := store.Prune(ctx, ScopeDedupeFeature, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	// The other scope is untouched.
	got, err := store.Get(ctx, ScopeDedupeReport, "old", now, 72*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Count)
}
