package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"guardian/internal/evidence/registry"
	"guardian/pkg/platform/sentinel"
)

const redisKeyPrefix = "guardian:registry:live:"

// RedisCache shares live registry answers between server instances.
type RedisCache struct {
	client   redis.UniversalClient
	cacheTTL time.Duration
}

// NewRedisCache constructs a Redis-backed registry cache.
func NewRedisCache(client redis.UniversalClient, cacheTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, cacheTTL: cacheTTL}
}

func (c *RedisCache) Save(ctx context.Context, identifier string, record *registry.AuthoritativeRecord) error {
	if record == nil {
		return nil
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode registry record: %w", err)
	}
	if err := c.client.Set(ctx, redisKeyPrefix+identifier, payload, c.cacheTTL).Err(); err != nil {
		return fmt.Errorf("save registry cache: %w", err)
	}
	return nil
}

func (c *RedisCache) Find(ctx context.Context, identifier string) (*registry.AuthoritativeRecord, error) {
	payload, err := c.client.Get(ctx, redisKeyPrefix+identifier).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find registry cache: %w", err)
	}
	var record registry.AuthoritativeRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("decode registry cache: %w", err)
	}
	return &record, nil
}
