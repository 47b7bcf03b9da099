package hugure

import (
	"github.com/fullscreen-triangle/hugure/internal/repository/insightcache"
)

// Record is the serializable form of one cached insight, used to snapshot a
// cache and warm-start another process.
type Record = insightcache.Record

// Cache is a shareable insight cache handle. One cache may back any number
// of engines and concurrent runs; it is safe for concurrent use.
type Cache struct {
	inner *insightcache.Cache
}

// CacheStats is a read-only cache snapshot for observability.
type CacheStats struct {
	EntryCount             int
	MeanTransferEfficiency float64
	Evictions              uint64
}

// NewCache creates an insight cache. capacity <= 0 selects the default cap
// of 100 000 entries; the cap is the one tunable controlling the cache term
// of the engine's memory bound.
func NewCache(capacity int) (*Cache, error) {
	inner, err := insightcache.New(capacity)
	if err != nil {
		return nil, err
	}
	return &Cache{inner: inner}, nil
}

// Stats returns entry count, mean transfer efficiency, and evictions.
func (c *Cache) Stats() CacheStats {
	s := c.inner.Stats()
	return CacheStats{
		EntryCount:             s.EntryCount,
		MeanTransferEfficiency: s.MeanTransferEfficiency,
		Evictions:              s.Evictions,
	}
}

// Snapshot exports all cached insights for persistence.
func (c *Cache) Snapshot() []Record { return c.inner.Snapshot() }

// Restore merges previously snapshotted insights into the cache.
func (c *Cache) Restore(records []Record) error { return c.inner.Restore(records) }
