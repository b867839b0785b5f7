// Package storage persists community features and waitlist entries in
// SQLite through database/sql.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/models"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/structures"
)

var (
	// ErrGreenlitDecided is returned when an admin override is attempted
	// on a feature whose greenlit flag was already set. The override is
	// terminal.
	ErrGreenlitDecided = errors.New("greenlit already decided")

	// ErrFeatureNotFound is returned by SetGreenlit when no feature has
	// the given id.
	ErrFeatureNotFound = errors.New("feature not found")
)

type FeatureRepositoryInterface interface {
	CreateFeature(ctx context.Context, f *models.CommunityFeature) error
	// GetFeature returns (nil, nil) when no feature has the given id.
	GetFeature(ctx context.Context, id string) (*models.CommunityFeature, error)
	ListVisible(ctx context.Context) ([]models.CommunityFeature, error)
	// ListPending returns the review queue: auto-hidden features with no
	// admin decision yet.
	ListPending(ctx context.Context) ([]models.CommunityFeature, error)
	// IncrementReported bumps the report counter and returns the new count.
	IncrementReported(ctx context.Context, id string) (int, error)
	SetAllowed(ctx context.Context, id string, allowed bool) error
	SetGreenlit(ctx context.Context, id string, greenlit bool) error
	CreateWaitlistEntry(ctx context.Context, e *models.WaitlistEntry) error
}

const featureSchema = `
	CREATE TABLE IF NOT EXISTS features (
		id             TEXT    PRIMARY KEY,
		name           TEXT    NOT NULL,
		description    TEXT    NOT NULL,
		category       TEXT    NOT NULL,
		created_at     INTEGER NOT NULL,
		reported_count INTEGER NOT NULL DEFAULT 0,
		allowed        INTEGER NOT NULL DEFAULT 1,
		greenlit       INTEGER
	);
	CREATE TABLE IF NOT EXISTS waitlist (
		id         TEXT    PRIMARY KEY,
		email      TEXT    NOT NULL UNIQUE,
		created_at INTEGER NOT NULL
	);`

// Repository implements FeatureRepositoryInterface over SQLite.
type Repository struct {
	db *sql.DB
}

var _ FeatureRepositoryInterface = (*Repository)(nil)

// Open opens (or creates) the SQLite database file and returns the
// shared handle. The rate-limit SQLite store reuses the same handle.
func Open(conf *structures.Config) (*sql.DB, error) {
	db, err := sql.Open("sqlite", conf.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

func NewRepository(db *sql.DB) (FeatureRepositoryInterface, error) {
	if _, err := db.Exec(featureSchema); err != nil {
		return nil, fmt.Errorf("create content schema: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) CreateFeature(ctx context.Context, f *models.CommunityFeature) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO features (id, name, description, category, created_at, reported_count, allowed)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.Name, f.Description, f.Category, f.CreatedAt.UnixMilli(), f.ReportedCount, f.Allowed,
	)
	if err != nil {
		return fmt.Errorf("insert feature: %w", err)
	}
	return nil
}

func (r *Repository) GetFeature(ctx context.Context, id string) (*models.CommunityFeature, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, category, created_at, reported_count, allowed, greenlit
		FROM features WHERE id = ?`, id)

	f, err := scanFeature(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select feature %s: %w", id, err)
	}
	return f, nil
}

func (r *Repository) ListVisible(ctx context.Context) ([]models.CommunityFeature, error) {
	return r.list(ctx, `
		SELECT id, name, description, category, created_at, reported_count, allowed, greenlit
		FROM features
		WHERE greenlit = 1 OR (greenlit IS NULL AND allowed = 1)
		ORDER BY created_at DESC`)
}

func (r *Repository) ListPending(ctx context.Context) ([]models.CommunityFeature, error) {
	return r.list(ctx, `
		SELECT id, name, description, category, created_at, reported_count, allowed, greenlit
		FROM features
		WHERE greenlit IS NULL AND allowed = 0
		ORDER BY created_at ASC`)
}

func (r *Repository) list(ctx context.Context, query string) ([]models.CommunityFeature, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query features: %w", err)
	}
	defer rows.Close()

	var features []models.CommunityFeature
	for rows.Next() {
		f, err := scanFeature(rows)
		if err != nil {
			return nil, fmt.Errorf("scan feature: %w", err)
		}
		features = append(features, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate features: %w", err)
	}
	return features, nil
}

func (r *Repository) IncrementReported(ctx context.Context, id string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		UPDATE features SET reported_count = reported_count + 1
		WHERE id = ?
		RETURNING reported_count`, id,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("increment reported_count for %s: %w", id, err)
	}
	return count, nil
}

func (r *Repository) SetAllowed(ctx context.Context, id string, allowed bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE features SET allowed = ? WHERE id = ?`, allowed, id)
	if err != nil {
		return fmt.Errorf("set allowed for %s: %w", id, err)
	}
	return nil
}

func (r *Repository) SetGreenlit(ctx context.Context, id string, greenlit bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE features SET greenlit = ? WHERE id = ? AND greenlit IS NULL`,
		greenlit, id,
	)
	if err != nil {
		return fmt.Errorf("set greenlit for %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		err := r.db.QueryRowContext(ctx, `SELECT 1 FROM features WHERE id = ?`, id).Scan(&exists)
		if err == sql.ErrNoRows {
			return ErrFeatureNotFound
		}
		if err != nil {
			return fmt.Errorf("set greenlit for %s: %w", id, err)
		}
		return ErrGreenlitDecided
	}
	return nil
}

func (r *Repository) CreateWaitlistEntry(ctx context.Context, e *models.WaitlistEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO waitlist (id, email, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (email) DO NOTHING`,
		e.ID, e.Email, e.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert waitlist entry: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFeature(row rowScanner) (*models.CommunityFeature, error) {
	var (
		f         models.CommunityFeature
		createdAt int64
		greenlit  sql.NullBool
	)
	err := row.Scan(&f.ID, &f.Name, &f.Description, &f.Category, &createdAt, &f.ReportedCount, &f.Allowed, &greenlit)
	if err != nil {
		return nil, err
	}
	f.CreatedAt = time.UnixMilli(createdAt)
	if greenlit.Valid {
		f.Greenlit = &greenlit.Bool
	}
	return &f, nil
}
