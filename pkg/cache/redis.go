package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores entries in Redis under a namespace prefix. Expiry is
// delegated to Redis key TTLs.
type RedisCache struct {
	client    *redis.Client
	namespace string
}

// RedisOptions configures the Redis backend.
type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	Namespace string // Key prefix, defaults to "changetower:"
}

// NewRedisCache connects to Redis and verifies the connection with PING.
func NewRedisCache(ctx context.Context, opts RedisOptions) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return newRedisCache(client, opts.Namespace), nil
}

func newRedisCache(client *redis.Client, namespace string) *RedisCache {
	if namespace == "" {
		namespace = "changetower:"
	}
	return &RedisCache{client: client, namespace: namespace}
}

// Get retrieves a value from the cache.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.namespace+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores a value with the given TTL (0 = no expiry).
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.namespace+key, data, max(ttl, 0)).Err()
}

// Delete removes a value from the cache.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.namespace+key).Err()
}

// Clear removes all keys in the namespace starting with prefix using SCAN,
// so large keyspaces are not blocked.
func (c *RedisCache) Clear(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, c.namespace+prefix+"*", 500).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 500 {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return c.client.Del(ctx, batch...).Err()
	}
	return nil
}

// Close closes the Redis client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// RedisBackend returns an [Opener] for a [RedisCache]. Recreate deletes
// every key in the namespace.
func RedisBackend(opts RedisOptions) Opener { return redisOpener{opts: opts} }

type redisOpener struct{ opts RedisOptions }

func (o redisOpener) Name() string { return "redis" }

func (o redisOpener) Open(ctx context.Context) (Cache, error) {
	return NewRedisCache(ctx, o.opts)
}

func (o redisOpener) Recreate(ctx context.Context) error {
	c, err := NewRedisCache(ctx, o.opts)
	if err != nil {
		return err
	}
	defer c.Close()
	return c.Clear(ctx, "")
}

var _ Cache = (*RedisCache)(nil)
