package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces keys written by this service.
const DefaultKeyPrefix = "cardwise:reco:"

// Redis is a Cache backed by a redis server.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

// RedisOption configures a Redis cache.
type RedisOption func(*redisConfig)

type redisConfig struct {
	opts   redis.Options
	prefix string
}

// WithKeyPrefix overrides DefaultKeyPrefix.
func WithKeyPrefix(p string) RedisOption {
	return func(c *redisConfig) { c.prefix = p }
}

// WithDialTimeout bounds connection establishment.
func WithDialTimeout(d time.Duration) RedisOption {
	return func(c *redisConfig) {
		if d > 0 {
			c.opts.DialTimeout = d
		}
	}
}

// WithMaxRetries sets the client retry budget. -1 disables retries.
func WithMaxRetries(n int) RedisOption {
	return func(c *redisConfig) { c.opts.MaxRetries = n }
}

// NewRedis returns a cache talking to addr. No connection is made until the
// first command; call Ping to check reachability.
func NewRedis(addr string, opts ...RedisOption) *Redis {
	cfg := redisConfig{
		opts:   redis.Options{Addr: addr, DialTimeout: 2 * time.Second},
		prefix: DefaultKeyPrefix,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Redis{rdb: redis.NewClient(&cfg.opts), prefix: cfg.prefix}
}

// Ping checks the server is reachable.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Get implements Cache.Get.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return b, nil
}

// Set implements Cache.Set.
func (r *Redis) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := r.rdb.Set(ctx, r.prefix+key, val, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close implements Cache.Close.
func (r *Redis) Close() error {
	return r.rdb.Close()
}
