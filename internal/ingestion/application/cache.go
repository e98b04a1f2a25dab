package application

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"

	ingestion "energy-dashboard/internal/ingestion/domain"
	"energy-dashboard/internal/observability/metrics"
)

// CacheStats counts snapshot cache activity.
type CacheStats struct {
	Hits   int64
	Misses int64
	Loads  int64
}

// SnapshotCache memoizes the last built snapshot, keyed by the fingerprint of
// its source set. Reads never reload; reloading happens only through Refresh
// or after Invalidate.
type SnapshotCache struct {
	loader *Loader
	logger *log.Logger

	mu      sync.RWMutex
	current *Snapshot
	stats   CacheStats
}

// NewSnapshotCache constructs a SnapshotCache.
func NewSnapshotCache(loader *Loader, logger *log.Logger) (*SnapshotCache, error) {
	if loader == nil {
		return nil, errors.New("snapshot cache: nil loader")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &SnapshotCache{loader: loader, logger: logger}, nil
}

// Get returns the cached snapshot, loading it when the cache is empty.
func (c *SnapshotCache) Get(ctx context.Context) (*Snapshot, error) {
	c.mu.RLock()
	current := c.current
	c.mu.RUnlock()
	if current != nil {
		c.mu.Lock()
		c.stats.Hits++
		c.mu.Unlock()
		metrics.IncCacheEvent(metrics.CacheHit)
		return current, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil {
		c.stats.Hits++
		metrics.IncCacheEvent(metrics.CacheHit)
		return c.current, nil
	}
	c.stats.Misses++
	metrics.IncCacheEvent(metrics.CacheMiss)

	snapshot, err := c.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	c.stats.Loads++
	c.current = snapshot
	return snapshot, nil
}

// Table returns the cached normalized table.
func (c *SnapshotCache) Table(ctx context.Context) (*ingestion.NormalizedTable, error) {
	snapshot, err := c.Get(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot.Table, nil
}

// Refresh rediscovers the sources and reloads only when their fingerprint
// changed. It reports whether a reload happened. On failure the previous
// snapshot stays cached.
func (c *SnapshotCache) Refresh(ctx context.Context) (*Snapshot, bool, error) {
	refs, err := c.loader.Discover(ctx)
	if err != nil {
		return nil, false, err
	}
	fingerprint := Fingerprint(refs)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil && c.current.Fingerprint == fingerprint {
		metrics.IncCacheEvent(metrics.CacheUnchanged)
		return c.current, false, nil
	}

	snapshot, err := c.loader.LoadRefs(ctx, refs)
	if err != nil {
		return nil, false, err
	}
	if c.current != nil {
		c.logger.Printf("snapshot cache: sources changed, replaced %s with %s", c.current.ID, snapshot.ID)
	}
	c.stats.Loads++
	c.current = snapshot
	metrics.IncCacheEvent(metrics.CacheReload)
	return snapshot, true, nil
}

// Invalidate drops the cached snapshot; the next Get reloads.
func (c *SnapshotCache) Invalidate() {
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()
	metrics.IncCacheEvent(metrics.CacheInvalidate)
}

// Stats returns a copy of the cache counters.
func (c *SnapshotCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}
