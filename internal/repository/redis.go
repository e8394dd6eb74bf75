package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// NewRedisClient parses url, tunes the pool and checks the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opts.PoolSize = 10
	opts.MinIdleConns = 2
	opts.MaxConnAge = time.Hour
	opts.IdleTimeout = 30 * time.Minute

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisFeedback keeps counters in one Redis hash, shared by every instance.
type RedisFeedback struct {
	client *redis.Client
	key    string
	owned  bool
}

// NewRedisFeedback stores counters in the hash at key. When owned is true Close
// also closes the client.
func NewRedisFeedback(client *redis.Client, key string, owned bool) *RedisFeedback {
	return &RedisFeedback{client: client, key: key, owned: owned}
}

// RecordClick implements FeedbackStore.
func (r *RedisFeedback) RecordClick(ctx context.Context, id string) (int64, error) {
	n, err := r.client.HIncrBy(ctx, r.key, id, 1).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to record click: %w", err)
	}
	return n, nil
}

// Count implements FeedbackStore.
func (r *RedisFeedback) Count(ctx context.Context, id string) (int64, error) {
	n, err := r.client.HGet(ctx, r.key, id).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read click count: %w", err)
	}
	return n, nil
}

// Counts implements FeedbackStore.
func (r *RedisFeedback) Counts(ctx context.Context) (map[string]int64, error) {
	raw, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read click counts: %w", err)
	}
	out := make(map[string]int64, len(raw))
	for id, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		out[id] = n
	}
	return out, nil
}

// Close implements FeedbackStore.
func (r *RedisFeedback) Close() error {
	if r.owned {
		return r.client.Close()
	}
	return nil
}
