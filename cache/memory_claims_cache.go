package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryClaimsCache implements ClaimsCache using ttlcache. This is the
// default cache when no Redis address is configured.
type MemoryClaimsCache struct {
	cache *ttlcache.Cache[string, *ClaimsEntry]
}

// NewMemoryClaimsCache creates an in-memory claims cache with automatic
// cleanup of expired entries.
//
//nolint:ireturn
func NewMemoryClaimsCache(defaultTTL time.Duration) ClaimsCache {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, *ClaimsEntry](defaultTTL),
		ttlcache.WithDisableTouchOnHit[string, *ClaimsEntry](),
	)

	go cache.Start()

	return &MemoryClaimsCache{cache: cache}
}

// Set implements ClaimsCache.Set. The entry lives until the token expires.
func (c *MemoryClaimsCache) Set(_ context.Context, token string, entry *ClaimsEntry) error {
	ttl := time.Until(entry.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	c.cache.Set(HashToken(token), entry, ttl)
	return nil
}

// Get implements ClaimsCache.Get.
func (c *MemoryClaimsCache) Get(_ context.Context, token string) (*ClaimsEntry, bool) {
	item := c.cache.Get(HashToken(token))
	if item == nil {
		return nil, false
	}
	entry := item.Value()
	if time.Now().After(entry.ExpiresAt) {
		return nil, false
	}
	return entry, true
}

// Delete removes a token's entry from the cache.
func (c *MemoryClaimsCache) Delete(_ context.Context, token string) error {
	c.cache.Delete(HashToken(token))
	return nil
}

// Close stops the cleanup goroutine.
func (c *MemoryClaimsCache) Close() error {
	c.cache.Stop()
	return nil
}
