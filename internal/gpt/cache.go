package gpt

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResponseCache stores raw AI responses keyed by content hash. Get
// returns (nil, nil) on a miss. inputText accompanies Set so backends
// that keep it for audit can; backends are free to drop it.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key, inputText string, response []byte) error
}

const redisKeyPrefix = "gpt:"

// RedisCache caches responses in Redis. A nil client degrades to a
// no-op so the classifier works without Redis configured.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	if c.client == nil {
		return nil, nil
	}
	data, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *RedisCache) Set(ctx context.Context, key, _ string, response []byte) error {
	if c.client == nil {
		return nil
	}
	return c.client.Set(ctx, redisKeyPrefix+key, response, c.ttl).Err()
}

// MemoryCache is an in-process ResponseCache for tests and one-shot
// runs without any cache backend configured.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]byte)}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	return data, nil
}

func (c *MemoryCache) Set(_ context.Context, key, _ string, response []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = append([]byte(nil), response...)
	return nil
}
