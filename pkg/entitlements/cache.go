package entitlements

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/atelierhq/atelier/pkg/catalog"
	"github.com/atelierhq/atelier/pkg/observability"
)

const cacheName = "entitlements"

// FeatureCache caches resolved feature matrices per organization behind a
// two-level cache-aside layer: an in-process LRU in front of Redis. Cache
// failures degrade to direct resolution, never to an error.
type FeatureCache struct {
	l1      *lru.Cache[int64, catalog.FeatureMatrix]
	redis   *redis.Client
	ttl     time.Duration
	metrics *observability.Metrics
}

// NewFeatureCache creates a feature cache. The redis client may be nil to
// run with the in-process layer only; metrics may be nil.
func NewFeatureCache(redisClient *redis.Client, l1Size int, ttl time.Duration, metrics *observability.Metrics) (*FeatureCache, error) {
	l1, err := lru.New[int64, catalog.FeatureMatrix](l1Size)
	if err != nil {
		return nil, fmt.Errorf("failed to create L1 cache: %w", err)
	}
	return &FeatureCache{
		l1:      l1,
		redis:   redisClient,
		ttl:     ttl,
		metrics: metrics,
	}, nil
}

func (c *FeatureCache) cacheKey(orgID int64) string {
	return fmt.Sprintf("entitlements:org:%d", orgID)
}

func (c *FeatureCache) recordHit(layer string) {
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.WithLabelValues(cacheName, layer).Inc()
	}
}

func (c *FeatureCache) recordMiss() {
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.WithLabelValues(cacheName).Inc()
	}
}

// Get returns the cached matrix for an organization, if present
func (c *FeatureCache) Get(ctx context.Context, orgID int64) (catalog.FeatureMatrix, bool) {
	if matrix, ok := c.l1.Get(orgID); ok {
		c.recordHit("l1")
		return matrix.Clone(), true
	}

	if c.redis != nil {
		cached, err := c.redis.Get(ctx, c.cacheKey(orgID)).Result()
		if err == nil {
			var matrix catalog.FeatureMatrix
			if err := json.Unmarshal([]byte(cached), &matrix); err == nil {
				c.l1.Add(orgID, matrix.Clone())
				c.recordHit("l2")
				return matrix, true
			}
		}
	}

	c.recordMiss()
	return nil, false
}

// Set stores a resolved matrix in both layers
func (c *FeatureCache) Set(ctx context.Context, orgID int64, matrix catalog.FeatureMatrix) {
	c.l1.Add(orgID, matrix.Clone())

	if c.redis != nil {
		if data, err := json.Marshal(matrix); err == nil {
			c.redis.Set(ctx, c.cacheKey(orgID), data, c.ttl)
		}
	}
}

// Invalidate drops the cached matrix for an organization from both layers
func (c *FeatureCache) Invalidate(ctx context.Context, orgID int64) {
	c.l1.Remove(orgID)
	if c.redis != nil {
		c.redis.Del(ctx, c.cacheKey(orgID))
	}
}
