package ratelimit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/providers"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/structures"
)

// NewStore builds the configured backend. Redis is verified reachable at
// boot so a misconfigured address fails fast instead of failing closed
// on every request.
func NewStore(conf *structures.Config, db *sql.DB, logger providers.Logger) (Store, error) {
	switch conf.RateStore.Backend {
	case "redis":
		s := NewRedisStore(conf)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Ping(ctx); err != nil {
			return nil, fmt.Errorf("redis rate store unreachable: %w", err)
		}
		logger.Infof(providers.TypeApp, "Rate store: redis at %s", conf.RateStore.Addr)
		return s, nil
	default:
		logger.Infof(providers.TypeApp, "Rate store: sqlite (single-node)")
		return NewSQLiteStore(db)
	}
}
