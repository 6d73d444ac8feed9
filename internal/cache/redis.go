package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// StatTTL bounds how stale cached profile counts may get.
const StatTTL = 30 * time.Second

// RedisCache caches derived profile stats (post/friend counts). A nil
// *RedisCache is valid and disables caching, so callers never branch on
// whether redis is configured.
type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes a Redis client for the given address.
func NewRedisCache(addr string) *RedisCache {
	return &RedisCache{Client: redis.NewClient(&redis.Options{Addr: addr})}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.Client.Ping(ctx).Err()
}

// GetCount returns the cached count for key, or ok=false on miss,
// disabled cache, or error.
func (c *RedisCache) GetCount(ctx context.Context, key string) (int64, bool) {
	if c == nil {
		return 0, false
	}
	s, err := c.Client.Get(ctx, key).Result()
	if err != nil {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SetCount stores a count under key with the stat TTL.
func (c *RedisCache) SetCount(ctx context.Context, key string, n int64) error {
	if c == nil {
		return nil
	}
	return c.Client.Set(ctx, key, strconv.FormatInt(n, 10), StatTTL).Err()
}

// Invalidate drops the given keys after a write.
func (c *RedisCache) Invalidate(ctx context.Context, keys ...string) error {
	if c == nil || len(keys) == 0 {
		return nil
	}
	err := c.Client.Del(ctx, keys...).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

// KeyForPostCount generates the cache key for a user's post count.
func KeyForPostCount(userID uint) string {
	return fmt.Sprintf("stats:posts:%d", userID)
}

// KeyForFriendCount generates the cache key for a user's friend count.
func KeyForFriendCount(userID uint) string {
	return fmt.Sprintf("stats:friends:%d", userID)
}
