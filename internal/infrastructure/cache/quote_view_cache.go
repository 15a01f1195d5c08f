package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	appbudget "github.com/quoteflow/backend/internal/application/budget"
	"github.com/quoteflow/backend/internal/infrastructure/config"
)

// QuoteViewCache caches the rendered public view of an enabled quote
// revision, keyed by lineage token. A superseding revision invalidates the
// token's entry so clients never see a stale revision past the TTL.
type QuoteViewCache interface {
	// Get returns the cached view, or (nil, nil) on a miss
	Get(ctx context.Context, token string) (*appbudget.PublicQuoteView, error)
	Set(ctx context.Context, token string, view *appbudget.PublicQuoteView) error
	Invalidate(ctx context.Context, token string) error
}

const quoteViewKeyPrefix = "quote:view:"

// RedisQuoteViewCache implements QuoteViewCache on Redis for deployments
// with more than one instance.
type RedisQuoteViewCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisQuoteViewCache connects to Redis and verifies the connection
func NewRedisQuoteViewCache(cfg config.RedisConfig, ttl time.Duration) (*RedisQuoteViewCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisQuoteViewCache{client: client, ttl: ttl}, nil
}

// NewRedisQuoteViewCacheWithClient wraps an existing Redis client
func NewRedisQuoteViewCacheWithClient(client *redis.Client, ttl time.Duration) *RedisQuoteViewCache {
	return &RedisQuoteViewCache{client: client, ttl: ttl}
}

// Get returns the cached view, or (nil, nil) on a miss
func (c *RedisQuoteViewCache) Get(ctx context.Context, token string) (*appbudget.PublicQuoteView, error) {
	data, err := c.client.Get(ctx, quoteViewKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read quote view from cache: %w", err)
	}

	var view appbudget.PublicQuoteView
	if err := json.Unmarshal(data, &view); err != nil {
		// A corrupt entry behaves like a miss.
		return nil, nil
	}
	return &view, nil
}

// Set stores the view under the token with the configured TTL
func (c *RedisQuoteViewCache) Set(ctx context.Context, token string, view *appbudget.PublicQuoteView) error {
	data, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("failed to encode quote view: %w", err)
	}
	if err := c.client.Set(ctx, quoteViewKeyPrefix+token, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write quote view to cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached view for a token
func (c *RedisQuoteViewCache) Invalidate(ctx context.Context, token string) error {
	if err := c.client.Del(ctx, quoteViewKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("failed to invalidate quote view: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client
func (c *RedisQuoteViewCache) Close() error {
	return c.client.Close()
}

var _ QuoteViewCache = (*RedisQuoteViewCache)(nil)
