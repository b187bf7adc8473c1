// Package cache provides a Redis-backed query-result cache with singleflight
// protection against thundering herds on cold keys. The cache is dropped
// whenever a new index snapshot is published.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"pubsearch/internal/search"
	"pubsearch/pkg/config"
	"pubsearch/pkg/metrics"
	pkgredis "pubsearch/pkg/redis"
)

const keyPrefix = "pubsearch:query:"

// QueryCache caches full rankings keyed by normalised query and top_n.
type QueryCache struct {
	client  *pkgredis.Client
	cfg     config.RedisConfig
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New creates a QueryCache on top of the given Redis client. m may be nil.
func New(client *pkgredis.Client, cfg config.RedisConfig, m *metrics.Metrics) *QueryCache {
	return &QueryCache{
		client:  client,
		cfg:     cfg,
		metrics: m,
		logger:  slog.Default().With("component", "query-cache"),
	}
}

// Get returns the cached ranking for the query, if present.
func (c *QueryCache) Get(ctx context.Context, query string, topN int) ([]search.Result, bool) {
	key := c.buildKey(query, topN)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.countMiss()
		return nil, false
	}
	var results []search.Result
	if err := json.Unmarshal([]byte(data), &results); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.countMiss()
		return nil, false
	}
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
	return results, true
}

func (c *QueryCache) countMiss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

// Set stores a ranking with the configured TTL. Failures are logged, not
// returned; the cache is best-effort.
func (c *QueryCache) Set(ctx context.Context, query string, topN int, results []search.Result) {
	key := c.buildKey(query, topN)
	data, err := json.Marshal(results)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached ranking or computes and caches it, making
// sure concurrent misses for the same key run computeFn only once.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	query string,
	topN int,
	computeFn func() ([]search.Result, error),
) ([]search.Result, bool, error) {
	if results, ok := c.Get(ctx, query, topN); ok {
		return results, true, nil
	}
	key := c.buildKey(query, topN)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if results, ok := c.Get(ctx, query, topN); ok {
			return results, nil
		}
		results, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, query, topN, results)
		return results, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.([]search.Result), false, nil
}

// Invalidate drops every cached ranking. Called after an index reload, when
// all cached scores are stale.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating query cache: %w", err)
	}
	c.logger.Info("query cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns hit and miss counts since startup.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) buildKey(query string, topN int) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	raw := fmt.Sprintf("%s|top_n=%d", normalized, topN)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
