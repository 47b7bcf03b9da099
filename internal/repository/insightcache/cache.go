// Package insightcache implements the shared cross-domain insight store: a
// capacity-bounded, signature-keyed cache with linearizable per-signature
// merges and transfer-efficiency bookkeeping. One cache may be shared by any
// number of concurrent search runs; it is the only state that crosses run
// boundaries.
package insightcache

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/fullscreen-triangle/hugure/internal/domain"
	"github.com/fullscreen-triangle/hugure/internal/domain/insight"
	"github.com/fullscreen-triangle/hugure/internal/metrics"
)

const (
	// DefaultCapacity is the default entry cap. This is the one tunable
	// controlling the cache term of the memory bound.
	DefaultCapacity = 100_000

	// maxHamming is the widest signature distance an approximate lookup
	// will accept as a near match.
	maxHamming = 16

	// approxScanLimit bounds how many recent entries an approximate lookup
	// examines.
	approxScanLimit = 4096

	// mergeAttempts bounds the lock retries before a merge surfaces
	// contention to the caller.
	mergeAttempts = 4

	stripes = 64
)

// entry is the mutable cached state for one signature, guarded by the
// signature's stripe lock.
type entry struct {
	ins       insight.Insight
	merges    uint64
	attempts  uint64
	successes uint64
}

// Cache is the concurrent insight store.
type Cache struct {
	entries   *lru.Cache[insight.Signature, *entry]
	locks     [stripes]sync.Mutex
	evictions atomic.Uint64
}

// Stats is a read-only snapshot for observability.
type Stats struct {
	EntryCount             int
	MeanTransferEfficiency float64
	Evictions              uint64
}

// New creates a cache. capacity <= 0 selects DefaultCapacity.
func New(capacity int) (*Cache, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &Cache{}
	entries, err := lru.NewWithEvict[insight.Signature, *entry](
		capacity,
		func(insight.Signature, *entry) {
			c.evictions.Add(1)
			metrics.CacheEvictionsTotal.Inc()
		},
	)
	if err != nil {
		return nil, fmt.Errorf("create insight cache: %w", err)
	}
	c.entries = entries
	return c, nil
}

func (c *Cache) stripe(sig insight.Signature) *sync.Mutex {
	return &c.locks[uint64(sig)%stripes]
}

// lockStripe acquires the signature's stripe with a bounded number of
// attempts so a stalled holder cannot wedge every writer.
func (c *Cache) lockStripe(sig insight.Signature) (*sync.Mutex, error) {
	mu := c.stripe(sig)
	for i := 0; i < mergeAttempts; i++ {
		if mu.TryLock() {
			return mu, nil
		}
		runtime.Gosched()
	}
	return nil, fmt.Errorf("%w: signature %#x", domain.ErrCacheContention, uint64(sig))
}

// Insert adds an insight, merging with any entry already holding its
// signature. Merges are linearizable per signature: the stripe lock covers
// the whole read-merge-write, so concurrent inserts never lose updates.
func (c *Cache) Insert(ins insight.Insight) error {
	mu, err := c.lockStripe(ins.Signature())
	if err != nil {
		return err
	}
	defer mu.Unlock()

	if e, ok := c.entries.Get(ins.Signature()); ok {
		e.ins = insight.Merge(e.ins, ins)
		e.merges++
	} else {
		c.entries.Add(ins.Signature(), &entry{ins: ins})
	}
	metrics.CacheEntries.Set(float64(c.entries.Len()))
	return nil
}

// Lookup finds an insight for the signature: exact match first, then the
// nearest cached signature by Hamming distance within the acceptance bound.
// Returns the insight, its transfer efficiency, and whether anything was
// found. requestingDomain is used only for cross-domain accounting.
func (c *Cache) Lookup(sig insight.Signature, requestingDomain string) (insight.Insight, float64, bool) {
	if ins, eff, ok := c.read(sig, requestingDomain, "hit"); ok {
		return ins, eff, true
	}

	near, ok := c.nearest(sig)
	if !ok {
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
		return insight.Insight{}, 0, false
	}
	if ins, eff, ok := c.read(near, requestingDomain, "near_hit"); ok {
		return ins, eff, true
	}
	// Entry evicted between scan and read.
	metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
	return insight.Insight{}, 0, false
}

// read returns the entry under its stripe lock so a concurrent merge cannot
// be observed half-written.
func (c *Cache) read(sig insight.Signature, requestingDomain, result string) (insight.Insight, float64, bool) {
	mu := c.stripe(sig)
	mu.Lock()
	defer mu.Unlock()

	e, ok := c.entries.Get(sig)
	if !ok {
		return insight.Insight{}, 0, false
	}
	metrics.CacheLookupsTotal.WithLabelValues(result).Inc()
	if e.ins.SourceDomain() != requestingDomain {
		metrics.CacheCrossDomainHitsTotal.Inc()
	}
	return e.ins, efficiency(e), true
}

// nearest scans the most recent cached signatures for the closest one within
// the Hamming bound. The scan is bounded, keeping lookups O(min(capacity,
// scan limit)) regardless of how long the cache has lived.
func (c *Cache) nearest(sig insight.Signature) (insight.Signature, bool) {
	keys := c.entries.Keys() // oldest to newest
	if len(keys) > approxScanLimit {
		keys = keys[len(keys)-approxScanLimit:]
	}

	best := maxHamming + 1
	var bestSig insight.Signature
	for _, k := range keys {
		if d := sig.Hamming(k); d < best {
			best = d
			bestSig = k
		}
	}
	return bestSig, best <= maxHamming
}

// ReportReuse records the outcome of applying a cached insight: an attempt,
// and a success when the application improved the distance.
func (c *Cache) ReportReuse(sig insight.Signature, improved bool) {
	mu := c.stripe(sig)
	mu.Lock()
	defer mu.Unlock()

	e, ok := c.entries.Peek(sig)
	if !ok {
		return
	}
	e.attempts++
	if improved {
		e.successes++
	}
}

// TransferEfficiency returns the reuse success ratio for a signature. A
// signature with no recorded attempts reports the 0.5 neutral prior.
func (c *Cache) TransferEfficiency(sig insight.Signature) float64 {
	mu := c.stripe(sig)
	mu.Lock()
	defer mu.Unlock()

	e, ok := c.entries.Peek(sig)
	if !ok {
		return 0.5
	}
	return efficiency(e)
}

// efficiency is Laplace-smoothed so zero attempts yield exactly the neutral
// prior and single outcomes do not swing the ratio to 0 or 1.
func efficiency(e *entry) float64 {
	return (float64(e.successes) + 1) / (float64(e.attempts) + 2)
}

// Len returns the current entry count.
func (c *Cache) Len() int { return c.entries.Len() }

// Stats snapshots entry count, mean transfer efficiency, and evictions.
func (c *Cache) Stats() Stats {
	keys := c.entries.Keys()
	var sum float64
	var counted int
	for _, k := range keys {
		mu := c.stripe(k)
		mu.Lock()
		if e, ok := c.entries.Peek(k); ok {
			sum += efficiency(e)
			counted++
		}
		mu.Unlock()
	}

	mean := 0.0
	if counted > 0 {
		mean = sum / float64(counted)
	}
	metrics.CacheTransferEfficiency.Set(mean)
	return Stats{
		EntryCount:             counted,
		MeanTransferEfficiency: mean,
		Evictions:              c.evictions.Load(),
	}
}
