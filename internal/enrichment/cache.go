// Package enrichment converts canonical preferences and a destination into
// concrete recommendation collections per category, plus weather by day.
// External providers sit behind narrow interfaces; results are cached with
// a TTL so iterative preference tweaking does not re-hit providers.
package enrichment

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonathan/trip-guide/internal/types"
)

// Cache stores enrichment results keyed by (category, destination,
// preference hash). Implementations must be safe for concurrent use across
// trips; entries are independent by key, so no cross-key ordering applies.
type Cache interface {
	Get(ctx context.Context, key string) ([]types.EnrichedItem, bool)
	Set(ctx context.Context, key string, items []types.EnrichedItem, ttl time.Duration)
}

// memoryEntry is one cached value with its expiry.
type memoryEntry struct {
	items     []types.EnrichedItem
	expiresAt time.Time
}

// MemoryCache is the in-process cache backend used by default and in tests.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry)}
}

// Get returns the cached items for key if present and unexpired.
func (c *MemoryCache) Get(_ context.Context, key string) ([]types.EnrichedItem, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.items, true
}

// Set stores items under key for ttl.
func (c *MemoryCache) Set(_ context.Context, key string, items []types.EnrichedItem, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = memoryEntry{items: items, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

// Prune removes expired entries so long-lived processes do not accumulate
// dead keys. Get already ignores expired entries; this only frees memory.
func (c *MemoryCache) Prune() {
	now := time.Now()
	c.mu.Lock()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

// RedisCache backs the enrichment cache with Redis so multiple instances
// share one result set. Failures degrade to cache misses; Redis being down
// must never fail an enrichment call.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache creates a Redis-backed cache. prefix namespaces keys so the
// instance can share a database with other workloads.
func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	if prefix == "" {
		prefix = "enrich"
	}
	return &RedisCache{client: client, prefix: prefix}
}

// Get returns the cached items for key, treating any Redis error as a miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]types.EnrichedItem, bool) {
	raw, err := c.client.Get(ctx, c.prefix+":"+key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Println("[enrich] redis get error:", err)
		}
		return nil, false
	}

	var items []types.EnrichedItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		log.Println("[enrich] redis cache decode error:", err)
		return nil, false
	}
	return items, true
}

// Set stores items under key for ttl, logging and ignoring Redis errors.
func (c *RedisCache) Set(ctx context.Context, key string, items []types.EnrichedItem, ttl time.Duration) {
	raw, err := json.Marshal(items)
	if err != nil {
		log.Println("[enrich] redis cache encode error:", err)
		return
	}
	if err := c.client.Set(ctx, c.prefix+":"+key, raw, ttl).Err(); err != nil {
		log.Println("[enrich] redis set error:", err)
	}
}
