package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares window counters across instances through Redis. The window
// start is baked into the key, so rollover needs no coordination: a new window
// simply addresses a fresh key and the old one expires.
type RedisStore struct {
	client    redis.Cmdable
	keyPrefix string
}

// NewRedisStore wraps a Redis client as a CounterStore.
func NewRedisStore(client redis.Cmdable) *RedisStore {
	if client == nil {
		panic("ratelimit: redis client is required")
	}
	return &RedisStore{client: client, keyPrefix: "ratelimit"}
}

// Incr atomically bumps the counter for the key's current window. INCR is
// atomic server-side, which gives the per-key linearizability the limiter
// requires.
func (s *RedisStore) Incr(ctx context.Context, key string, windowStart time.Time, window time.Duration) (int64, error) {
	redisKey := fmt.Sprintf("%s:%s:%d", s.keyPrefix, key, windowStart.Unix())

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	// Twice the window leaves slack for clock skew between instances.
	pipe.Expire(ctx, redisKey, 2*window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("redis incr: %w", err)
	}

	return incr.Val(), nil
}
