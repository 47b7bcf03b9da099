package insightcache

import (
	"github.com/fullscreen-triangle/hugure/internal/domain"
	"github.com/fullscreen-triangle/hugure/internal/domain/insight"
	"github.com/fullscreen-triangle/hugure/internal/metrics"
)

// Record is the serializable form of one cached insight, used by the
// snapshot store to carry learned insights across process restarts.
type Record struct {
	Signature    uint64    `json:"signature"`
	Direction    []float64 `json:"direction"`
	Confidence   float64   `json:"confidence"`
	SourceDomain string    `json:"source_domain"`
	Merges       uint64    `json:"merges"`
	Attempts     uint64    `json:"attempts"`
	Successes    uint64    `json:"successes"`
}

// Snapshot exports all cached insights, oldest first so restoring preserves
// recency order.
func (c *Cache) Snapshot() []Record {
	keys := c.entries.Keys()
	records := make([]Record, 0, len(keys))
	for _, k := range keys {
		mu := c.stripe(k)
		mu.Lock()
		e, ok := c.entries.Peek(k)
		if !ok {
			mu.Unlock()
			continue
		}
		records = append(records, Record{
			Signature:    uint64(e.ins.Signature()),
			Direction:    e.ins.Direction(),
			Confidence:   e.ins.Confidence(),
			SourceDomain: e.ins.SourceDomain(),
			Merges:       e.merges,
			Attempts:     e.attempts,
			Successes:    e.successes,
		})
		mu.Unlock()
	}
	return records
}

// Restore loads records into the cache, merging with anything already
// present and keeping the reuse bookkeeping.
func (c *Cache) Restore(records []Record) error {
	for _, r := range records {
		sig := insight.Signature(r.Signature)
		ins := insight.New(sig, domain.Delta(r.Direction), r.Confidence, r.SourceDomain)

		mu, err := c.lockStripe(sig)
		if err != nil {
			return err
		}
		if e, ok := c.entries.Get(sig); ok {
			e.ins = insight.Merge(e.ins, ins)
			e.merges += r.Merges + 1
			e.attempts += r.Attempts
			e.successes += r.Successes
		} else {
			c.entries.Add(sig, &entry{
				ins:       ins,
				merges:    r.Merges,
				attempts:  r.Attempts,
				successes: r.Successes,
			})
		}
		mu.Unlock()
	}
	metrics.CacheEntries.Set(float64(c.entries.Len()))
	return nil
}
