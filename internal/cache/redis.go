package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisCache stores strings in Redis under a key prefix so several processes
// share one cache.
type RedisCache struct {
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	timeout time.Duration
}

var _ Cache[string] = (*RedisCache)(nil)

// RedisOptions configures NewRedisClient.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects and pings. It returns nil when Redis is unreachable
// so callers can fall back to the in-process cache.
func NewRedisClient(ctx context.Context, opts RedisOptions) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.WarnContext(ctx, "Redis connection failed, continuing without Redis", "addr", opts.Addr, "error", err)
		_ = rdb.Close()
		return nil
	}

	slog.InfoContext(ctx, "Redis connection established", "addr", opts.Addr)
	return rdb
}

func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: prefix, ttl: ttl, timeout: 2 * time.Second}
}

func (c *RedisCache) Get(key string) (string, bool) {
	ctx, cancel := c.ctx()
	defer cancel()

	val, err := c.client.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		slog.Warn("Redis get failed", "key", key, "error", err)
		return "", false
	}
	return val, true
}

func (c *RedisCache) Set(key string, data string) {
	ctx, cancel := c.ctx()
	defer cancel()

	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		slog.Warn("Redis set failed", "key", key, "error", err)
	}
}

func (c *RedisCache) Delete(key string) {
	ctx, cancel := c.ctx()
	defer cancel()

	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		slog.Warn("Redis delete failed", "key", key, "error", err)
	}
}

// Size counts the keys under the prefix. Errors count as zero.
func (c *RedisCache) Size() int {
	ctx, cancel := c.ctx()
	defer cancel()

	var (
		cursor uint64
		total  int
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+"*", 100).Result()
		if err != nil {
			slog.Warn("Redis scan failed", "prefix", c.prefix, "error", err)
			return 0
		}
		total += len(keys)
		if next == 0 {
			return total
		}
		cursor = next
	}
}

func (c *RedisCache) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.timeout)
}
