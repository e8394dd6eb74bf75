package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisCache keeps the entry under one Redis key, shared by every server instance.
type RedisCache struct {
	client *redis.Client
	key    string
}

// NewRedisCache creates a cache stored at key.
func NewRedisCache(client *redis.Client, key string) *RedisCache {
	return &RedisCache{client: client, key: key}
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context) (*Entry, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog cache from redis: %w", err)
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("corrupt catalog cache in redis: %w", err)
	}
	return &e, nil
}

// Put implements Cache. The key has no expiry.
func (c *RedisCache) Put(ctx context.Context, e *Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog cache: %w", err)
	}
	if err := c.client.Set(ctx, c.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write catalog cache to redis: %w", err)
	}
	return nil
}
