package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Cache provides type-safe JSON caching on top of Client.
type Cache[T any] struct {
	client    *Client
	keyPrefix string
	ttl       time.Duration
}

// NewCache creates a new type-safe cache.
func NewCache[T any](client *Client, prefix string, ttl time.Duration) (*Cache[T], error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if prefix == "" {
		return nil, errors.New("key prefix is required")
	}
	if ttl <= 0 {
		return nil, errors.New("TTL must be positive")
	}
	return &Cache[T]{client: client, keyPrefix: prefix, ttl: ttl}, nil
}

// MustNewCache creates a new cache or panics. Use only in initialization
// code where failure is unrecoverable.
func MustNewCache[T any](client *Client, prefix string, ttl time.Duration) *Cache[T] {
	c, err := NewCache[T](client, prefix, ttl)
	if err != nil {
		panic(fmt.Sprintf("failed to create cache: %v", err))
	}
	return c
}

func (c *Cache[T]) buildKey(key string) string {
	return fmt.Sprintf("%s:%s", c.keyPrefix, key)
}

// Get retrieves a cached value by key. Returns ErrCacheMiss when absent.
func (c *Cache[T]) Get(ctx context.Context, key string) (*T, error) {
	if key == "" {
		return nil, errors.New("key is required")
	}

	data, err := c.client.Get(ctx, c.buildKey(key))
	if err != nil {
		return nil, err
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("cache unmarshal: %w", err)
	}
	return &value, nil
}

// Set stores a value in the cache with the default TTL.
func (c *Cache[T]) Set(ctx context.Context, key string, value T) error {
	if key == "" {
		return errors.New("key is required")
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}
	return c.client.Set(ctx, c.buildKey(key), data, c.ttl)
}

// Delete removes a key from the cache.
func (c *Cache[T]) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("key is required")
	}
	return c.client.Del(ctx, c.buildKey(key))
}

// DeleteAll removes every key under the cache prefix.
func (c *Cache[T]) DeleteAll(ctx context.Context) error {
	return c.client.DelPattern(ctx, c.buildKey("*"))
}

// GetOrSet retrieves a value from the cache, or calls the loader and caches
// the result. Any cache error falls back to the loader; a failed Set after
// load is logged but does not fail the operation.
func (c *Cache[T]) GetOrSet(ctx context.Context, key string, loader func(ctx context.Context) (*T, error)) (*T, error) {
	if key == "" {
		return nil, errors.New("key is required")
	}
	if loader == nil {
		return nil, errors.New("loader function is required")
	}

	value, err := c.Get(ctx, key)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		c.client.logger.Warn("cache get failed, falling back to source",
			"key", key, "error", err)
	}

	value, err = loader(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.Set(ctx, key, *value); err != nil {
		c.client.logger.Warn("cache set failed after load",
			"key", key, "error", err)
	}
	return value, nil
}

// TTL returns the default TTL for this cache.
func (c *Cache[T]) TTL() time.Duration { return c.ttl }

// Prefix returns the key prefix for this cache.
func (c *Cache[T]) Prefix() string { return c.keyPrefix }
