package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"guardian/internal/ratelimit"
)

const redisKeyPrefix = "guardian:ratelimit:"

// RedisStore implements ratelimit.Store with one sorted set per key, scored by
// request time in microseconds. The count-then-add sequence is not atomic, so
// concurrent callers across replicas may overshoot the limit slightly.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*ratelimit.Result, error) {
	redisKey := redisKeyPrefix + key
	now := time.Now()
	cutoff := now.Add(-window)

	var (
		count  *redis.IntCmd
		oldest *redis.ZSliceCmd
	)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, redisKey, "-inf", strconv.FormatInt(cutoff.UnixMicro(), 10))
		count = pipe.ZCard(ctx, redisKey)
		oldest = pipe.ZRangeWithScores(ctx, redisKey, 0, 0)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("rate limit window %s: %w", key, err)
	}

	resetAt := now.Add(window)
	if first := oldest.Val(); len(first) > 0 {
		resetAt = time.UnixMicro(int64(first[0].Score)).Add(window)
	}

	used := int(count.Val())
	if used >= limit {
		return &ratelimit.Result{
			Allowed:    false,
			Limit:      limit,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: resetAt.Sub(now),
		}, nil
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixMicro()), Member: uuid.NewString()})
		pipe.PExpire(ctx, redisKey, window)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("rate limit record %s: %w", key, err)
	}

	return &ratelimit.Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - used - 1,
		ResetAt:   resetAt,
	}, nil
}
