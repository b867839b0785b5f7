package ratelimit

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/models"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/structures"
)

const redisKeyPrefix = "guard:"

// RedisStore keeps counters in Redis as JSON values with the scope
// window as TTL, so expiry is mostly Redis's job and Prune only mops up
// entries whose window shrank.
type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(conf *structures.Config) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     conf.RateStore.Addr,
			Password: conf.RateStore.Password,
			DB:       conf.RateStore.DB,
		}),
	}
}

func redisKey(scope, key string) string {
	return redisKeyPrefix + scope + ":" + key
}

func (s *RedisStore) Get(ctx context.Context, scope, key string, now time.Time, window time.Duration) (models.RateLimitEntry, error) {
	fresh := models.NewRateLimitEntry(scope, key, now)

	val, err := s.client.Get(ctx, redisKey(scope, key)).Result()
	if err == redis.Nil {
		return fresh, nil
	}
	if err != nil {
		return fresh, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var entry models.RateLimitEntry
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		// Unreadable entry counts as absent rather than poisoning the key.
		return fresh, nil
	}
	if entry.Expired(now, window) {
		return fresh, nil
	}
	return entry, nil
}

func (s *RedisStore) Commit(ctx context.Context, entry models.RateLimitEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	// TTL from the entry's own window start would need the window here;
	// commits always follow a Get, so FirstSeen is at most a window old.
	ttl := time.Until(entry.FirstSeen.Add(48 * time.Hour))
	if ttl <= 0 {
		ttl = time.Hour
	}
	if err := s.client.Set(ctx, redisKey(entry.Scope, entry.Key), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Prune(ctx context.Context, scope string, cutoff time.Time) (int, error) {
	var removed int
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+scope+":*", 0).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		val, err := s.client.Get(ctx, k).Result()
		if err != nil {
			continue
		}
		var entry models.RateLimitEntry
		if err := json.Unmarshal([]byte(val), &entry); err != nil || entry.FirstSeen.Before(cutoff) {
			if s.client.Del(ctx, k).Err() == nil {
				removed++
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return removed, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
