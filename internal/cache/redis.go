package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dichenko/myshadow/internal/config"
)

// MatchCountTTL bounds how long a cached match count is trusted before
// the database is consulted again.
const MatchCountTTL = time.Hour

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	return c.Client.Del(ctx, keys...).Err()
}

// KeyForMatchCount generates the Redis key for a user's match count.
func (c *RedisCache) KeyForMatchCount(userID uint64) string {
	return fmt.Sprintf("matches:count:%d", userID)
}

// GetMatchCount returns the cached match count for a user.
// A cache miss is reported via the second return value, not an error.
func (c *RedisCache) GetMatchCount(ctx context.Context, userID uint64) (int64, bool, error) {
	val, err := c.Client.Get(ctx, c.KeyForMatchCount(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	} else if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, nil // treat a corrupt entry as a miss
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, c.KeyForMatchCount(userID), MatchCountTTL).Err()
	return n, true, nil
}

// SetMatchCount stores the match count with a fresh TTL.
func (c *RedisCache) SetMatchCount(ctx context.Context, userID uint64, count int64) error {
	return c.Client.Set(ctx, c.KeyForMatchCount(userID), count, MatchCountTTL).Err()
}

// InvalidateMatchCount drops cached counts for the given users. Called
// whenever an answer or the pairing state changes, since either side's
// match list may have moved.
func (c *RedisCache) InvalidateMatchCount(ctx context.Context, userIDs ...uint64) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, c.KeyForMatchCount(id))
	}
	return c.Client.Del(ctx, keys...).Err()
}
