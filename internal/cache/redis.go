package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/octobees/leadform/internal/entity"
)

const keyPrefix = "company:"

// RedisRecordCache keeps normalised company records in Redis for a fixed TTL.
type RedisRecordCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisRecordCache wraps client. A non-positive ttl defaults to ten minutes.
func NewRedisRecordCache(client redis.Cmdable, ttl time.Duration) *RedisRecordCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisRecordCache{client: client, ttl: ttl}
}

// Get returns the cached record for query, if any.
func (c *RedisRecordCache) Get(ctx context.Context, query string) (entity.CompanyRecord, bool, error) {
	raw, err := c.client.Get(ctx, Key(query)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var record entity.CompanyRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, false, fmt.Errorf("decode cached record: %w", err)
	}
	return record, true, nil
}

// Set stores record under query.
func (c *RedisRecordCache) Set(ctx context.Context, query string, record entity.CompanyRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := c.client.Set(ctx, Key(query), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Key derives the cache key for a lookup query. Case is folded; whitespace is kept.
func Key(query string) string {
	return keyPrefix + strings.ToLower(query)
}
