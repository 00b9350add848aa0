package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pilab-dev/kauth/cache"
)

// ClaimsCache implements cache.ClaimsCache on Redis, for deployments running
// more than one server instance behind a balancer.
type ClaimsCache struct {
	client *redis.Client
	prefix string
}

// NewClaimsCache creates a Redis-backed claims cache. The prefix namespaces
// keys when the Redis instance is shared.
func NewClaimsCache(client *redis.Client, prefix string) *ClaimsCache {
	return &ClaimsCache{
		client: client,
		prefix: prefix,
	}
}

func (c *ClaimsCache) redisKey(token string) string {
	return fmt.Sprintf("%s:claims:%s", c.prefix, cache.HashToken(token))
}

// Set stores verified claims with an expiry matching the token's.
func (c *ClaimsCache) Set(ctx context.Context, token string, entry *cache.ClaimsEntry) error {
	ttl := time.Until(entry.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal claims entry: %w", err)
	}

	if err := c.client.Set(ctx, c.redisKey(token), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set claims entry in redis: %w", err)
	}
	return nil
}

// Get retrieves verified claims for a token, reporting a miss on any error
// so callers fall back to full verification.
func (c *ClaimsCache) Get(ctx context.Context, token string) (*cache.ClaimsEntry, bool) {
	payload, err := c.client.Get(ctx, c.redisKey(token)).Bytes()
	if err != nil {
		return nil, false
	}

	var entry cache.ClaimsEntry
	if err := json.Unmarshal(payload, &entry); err != nil {
		return nil, false
	}
	if time.Now().After(entry.ExpiresAt) {
		return nil, false
	}
	return &entry, true
}

// Delete removes a token's entry.
func (c *ClaimsCache) Delete(ctx context.Context, token string) error {
	return c.client.Del(ctx, c.redisKey(token)).Err()
}

// Close releases the underlying client.
func (c *ClaimsCache) Close() error {
	return c.client.Close()
}

var _ cache.ClaimsCache = (*ClaimsCache)(nil)
