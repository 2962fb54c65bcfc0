package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/academic-dashboard/internal/config"
)

// ViewCacheRepository stores serialized dashboard views in Redis.
type ViewCacheRepository struct {
	rdb *redis.Client
}

// NewViewCacheRepository creates a new ViewCacheRepository.
func NewViewCacheRepository(rdb *redis.Client) *ViewCacheRepository {
	return &ViewCacheRepository{rdb: rdb}
}

// Get returns the cached bytes for key. A miss is reported as ok=false with a nil error.
func (r *ViewCacheRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get view %s: %w", key, err)
	}
	return data, true, nil
}

// Set stores data under key with the given TTL.
func (r *ViewCacheRepository) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := r.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("set view %s: %w", key, err)
	}
	return nil
}

// Flush deletes every cached dashboard view and returns how many keys were removed.
func (r *ViewCacheRepository) Flush(ctx context.Context) (int64, error) {
	var removed int64
	iter := r.rdb.Scan(ctx, 0, config.CacheKey.DashboardViewPattern(), 100).Iterator()
	for iter.Next(ctx) {
		n, err := r.rdb.Del(ctx, iter.Val()).Result()
		if err != nil {
			return removed, fmt.Errorf("delete view %s: %w", iter.Val(), err)
		}
		removed += n
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("scan views: %w", err)
	}
	return removed, nil
}

// Ping checks the Redis connection.
func (r *ViewCacheRepository) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}
