package ratelimit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/models"
)

const rateLimitSchema = `
	CREATE TABLE IF NOT EXISTS rate_limits (
		scope      TEXT    NOT NULL,
		key        TEXT    NOT NULL,
		count      INTEGER NOT NULL,
		first_seen INTEGER NOT NULL,
		last_seen  INTEGER,
		PRIMARY KEY (scope, key)
	);
	CREATE INDEX IF NOT EXISTS idx_rate_limits_first_seen
		ON rate_limits (scope, first_seen);`

// SQLiteStore keeps counters in the same SQLite file as the content
// rows. Single-node deployments only; multi-instance setups use the
// Redis backend.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if _, err := db.Exec(rateLimitSchema); err != nil {
		return nil, fmt.Errorf("create rate_limits schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, scope, key string, now time.Time, window time.Duration) (models.RateLimitEntry, error) {
	fresh := models.NewRateLimitEntry(scope, key, now)

	var (
		count     int
		firstSeen int64
		lastSeen  sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT count, first_seen, last_seen FROM rate_limits WHERE scope = ? AND key = ?`,
		scope, key,
	).Scan(&count, &firstSeen, &lastSeen)
	if errors.Is(err, sql.ErrNoRows) {
		return fresh, nil
	}
	if err != nil {
		return fresh, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	entry := models.RateLimitEntry{
		Scope:     scope,
		Key:       key,
		Count:     count,
		FirstSeen: time.UnixMilli(firstSeen),
	}
	if lastSeen.Valid {
		ts := time.UnixMilli(lastSeen.Int64)
		entry.LastSeen = &ts
	}
	if entry.Expired(now, window) {
		return fresh, nil
	}
	return entry, nil
}

func (s *SQLiteStore) Commit(ctx context.Context, entry models.RateLimitEntry) error {
	var lastSeen sql.NullInt64
	if entry.LastSeen != nil {
		lastSeen = sql.NullInt64{Int64: entry.LastSeen.UnixMilli(), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rate_limits (scope, key, count, first_seen, last_seen)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (scope, key) DO UPDATE SET
			count = excluded.count,
			first_seen = excluded.first_seen,
			last_seen = excluded.last_seen`,
		entry.Scope, entry.Key, entry.Count, entry.FirstSeen.UnixMilli(), lastSeen,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *SQLiteStore) Prune(ctx context.Context, scope string, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM rate_limits WHERE scope = ? AND first_seen < ?`,
		scope, cutoff.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
