package rag

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// EmbeddingCache caches embeddings to reduce API calls. Lookups hit the local
// map first, then Redis when configured; a nil Redis client degrades to
// local-only caching.
type EmbeddingCache struct {
	local   map[string]*cachedEmbedding
	mu      sync.RWMutex
	maxSize int
	ttl     time.Duration
	redis   *redis.Client

	hits   int64
	misses int64
}

type cachedEmbedding struct {
	embedding []float32
	createdAt time.Time
}

// EmbeddingCacheConfig configures the embedding cache.
type EmbeddingCacheConfig struct {
	MaxSize int
	TTL     time.Duration
	Redis   *redis.Client
}

// DefaultEmbeddingCacheConfig returns sensible defaults. Embeddings for a
// given text never change, so a long TTL is safe.
func DefaultEmbeddingCacheConfig() *EmbeddingCacheConfig {
	return &EmbeddingCacheConfig{
		MaxSize: 10000,
		TTL:     24 * time.Hour,
	}
}

// NewEmbeddingCache creates a new embedding cache.
func NewEmbeddingCache(cfg *EmbeddingCacheConfig) *EmbeddingCache {
	if cfg == nil {
		cfg = DefaultEmbeddingCacheConfig()
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 10000
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &EmbeddingCache{
		local:   make(map[string]*cachedEmbedding),
		maxSize: cfg.MaxSize,
		ttl:     cfg.TTL,
		redis:   cfg.Redis,
	}
}

// Get retrieves an embedding from cache.
func (c *EmbeddingCache) Get(ctx context.Context, text string) ([]float32, bool) {
	key := hashText(text)

	c.mu.RLock()
	entry, ok := c.local[key]
	c.mu.RUnlock()

	if ok && time.Since(entry.createdAt) <= c.ttl {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return entry.embedding, true
	}

	if c.redis != nil {
		data, err := c.redis.Get(ctx, "embedding:"+key).Bytes()
		if err == nil {
			var vec []float32
			if json.Unmarshal(data, &vec) == nil && len(vec) > 0 {
				c.setLocal(key, vec)
				c.mu.Lock()
				c.hits++
				c.mu.Unlock()
				return vec, true
			}
		}
	}

	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
	return nil, false
}

// Set stores an embedding in the local cache and Redis when configured.
func (c *EmbeddingCache) Set(ctx context.Context, text string, embedding []float32) {
	key := hashText(text)
	c.setLocal(key, embedding)

	if c.redis != nil {
		if data, err := json.Marshal(embedding); err == nil {
			c.redis.Set(ctx, "embedding:"+key, data, c.ttl)
		}
	}
}

// Stats returns cache hit/miss counters and the hit rate.
func (c *EmbeddingCache) Stats() (hits, misses int64, hitRate float64) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	hits = c.hits
	misses = c.misses
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return
}

func (c *EmbeddingCache) setLocal(key string, embedding []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.local) >= c.maxSize {
		c.evictOldest()
	}
	c.local[key] = &cachedEmbedding{
		embedding: embedding,
		createdAt: time.Now(),
	}
}

func (c *EmbeddingCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range c.local {
		if oldestKey == "" || entry.createdAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.createdAt
		}
	}
	if oldestKey != "" {
		delete(c.local, oldestKey)
	}
}

func hashText(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:16])
}
