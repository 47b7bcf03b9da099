package insightcache

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/fullscreen-triangle/hugure/internal/domain"
	"github.com/fullscreen-triangle/hugure/internal/domain/insight"
)

func newTestCache(t *testing.T, capacity int) *Cache {
	t.Helper()
	c, err := New(capacity)
	if err != nil {
		t.Fatalf("create cache: %v", err)
	}
	return c
}

func makeInsight(dir domain.Delta, confidence float64, sourceDomain string) insight.Insight {
	return insight.New(insight.SignatureOf(dir), dir, confidence, sourceDomain)
}

func TestInsertLookup_Exact(t *testing.T) {
	c := newTestCache(t, 16)

	ins := makeInsight(domain.Delta{1, 0, -1}, 0.7, "alpha")
	if err := c.Insert(ins); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, eff, ok := c.Lookup(ins.Signature(), "alpha")
	if !ok {
		t.Fatal("expected exact hit")
	}
	if got.SourceDomain() != "alpha" {
		t.Errorf("source domain: got %q", got.SourceDomain())
	}
	if eff != 0.5 {
		t.Errorf("fresh entry efficiency: got %g, want neutral 0.5", eff)
	}
}

func TestLookup_Miss(t *testing.T) {
	c := newTestCache(t, 16)

	if _, _, ok := c.Lookup(insight.Signature(0xFFFF_FFFF_FFFF_FFFF), "any"); ok {
		t.Error("lookup on empty cache must miss")
	}
}

func TestLookup_ApproximateByHamming(t *testing.T) {
	c := newTestCache(t, 16)

	dir := make(domain.Delta, 16)
	for i := range dir {
		dir[i] = float64(i + 1)
	}
	ins := makeInsight(dir, 0.8, "alpha")
	if err := c.Insert(ins); err != nil {
		t.Fatalf("insert: %v", err)
	}

	// A probe differing in a couple of bits still finds the entry.
	probe := ins.Signature() ^ 0b11
	got, _, ok := c.Lookup(probe, "beta")
	if !ok {
		t.Fatal("expected near hit within the Hamming bound")
	}
	if got.Signature() != ins.Signature() {
		t.Error("near hit returned the wrong entry")
	}
}

func TestLookup_BeyondHammingBoundMisses(t *testing.T) {
	c := newTestCache(t, 16)

	ins := makeInsight(domain.Delta{1, 1, 1, 1}, 0.5, "alpha")
	if err := c.Insert(ins); err != nil {
		t.Fatalf("insert: %v", err)
	}

	// Flip more bits than the acceptance bound allows.
	probe := ins.Signature()
	for i := 0; i < maxHamming+1; i++ {
		probe ^= 1 << uint(i)
	}
	if _, _, ok := c.Lookup(probe, "beta"); ok {
		t.Error("probe beyond the Hamming bound must miss")
	}
}

func TestInsert_MergesSameSignature(t *testing.T) {
	c := newTestCache(t, 16)

	dir := domain.Delta{1, 0}
	a := makeInsight(dir, 0.5, "alpha")
	b := makeInsight(dir, 0.5, "alpha")

	if err := c.Insert(a); err != nil {
		t.Fatalf("insert a: %v", err)
	}
	if err := c.Insert(b); err != nil {
		t.Fatalf("insert b: %v", err)
	}

	if got := c.Len(); got != 1 {
		t.Fatalf("entries: got %d, want 1 merged entry", got)
	}
	got, _, ok := c.Lookup(a.Signature(), "alpha")
	if !ok {
		t.Fatal("expected merged entry")
	}
	if got.Confidence() <= 0.5 {
		t.Errorf("merged confidence should rise above 0.5: got %g", got.Confidence())
	}
}

func TestCapacity_EvictsLRU(t *testing.T) {
	c := newTestCache(t, 4)

	for i := 0; i < 12; i++ {
		dir := make(domain.Delta, 8)
		for j := range dir {
			// Distinct sign patterns produce distinct signatures.
			if (i>>uint(j))&1 == 1 {
				dir[j] = 1
			} else {
				dir[j] = -1
			}
		}
		if err := c.Insert(makeInsight(dir, 0.5, "alpha")); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	if got := c.Len(); got > 4 {
		t.Errorf("entries: got %d, capacity 4", got)
	}
	if got := c.Stats().Evictions; got == 0 {
		t.Error("expected evictions after exceeding capacity")
	}
}

func TestTransferEfficiency_NeutralPrior(t *testing.T) {
	c := newTestCache(t, 16)

	if got := c.TransferEfficiency(insight.Signature(42)); got != 0.5 {
		t.Errorf("unknown signature efficiency: got %g, want 0.5", got)
	}
}

func TestReportReuse_MovesEfficiency(t *testing.T) {
	c := newTestCache(t, 16)

	ins := makeInsight(domain.Delta{1, -1}, 0.5, "alpha")
	if err := c.Insert(ins); err != nil {
		t.Fatalf("insert: %v", err)
	}
	sig := ins.Signature()

	c.ReportReuse(sig, true)
	c.ReportReuse(sig, true)
	c.ReportReuse(sig, true)
	if got := c.TransferEfficiency(sig); got <= 0.5 {
		t.Errorf("efficiency after successes: got %g, want > 0.5", got)
	}

	for i := 0; i < 10; i++ {
		c.ReportReuse(sig, false)
	}
	if got := c.TransferEfficiency(sig); got >= 0.5 {
		t.Errorf("efficiency after failures: got %g, want < 0.5", got)
	}
}

func TestReportReuse_UnknownSignatureIsNoop(t *testing.T) {
	c := newTestCache(t, 16)
	c.ReportReuse(insight.Signature(42), true)

	if got := c.Len(); got != 0 {
		t.Errorf("reporting on an unknown signature created %d entries", got)
	}
}

func TestInsert_ConcurrentMergesLoseNothing(t *testing.T) {
	c := newTestCache(t, 1024)

	const workers = 16
	const perWorker = 50

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				dir := domain.Delta{float64(w + 1), float64(i%7) - 3}
				ins := makeInsight(dir, 0.5, fmt.Sprintf("dom-%d", w))
				// Bounded lock retries may surface contention; retrying the
				// insert is the caller's contract.
				var err error
				for i := 0; i < 100; i++ {
					if err = c.Insert(ins); !errors.Is(err, domain.ErrCacheContention) {
						break
					}
				}
				if err != nil {
					errs <- err
					return
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent insert: %v", err)
	}
	if c.Len() == 0 {
		t.Error("expected entries after concurrent inserts")
	}
}

func TestSnapshotRestore_RoundTrip(t *testing.T) {
	c := newTestCache(t, 16)

	ins := makeInsight(domain.Delta{1, 0, -1}, 0.7, "alpha")
	if err := c.Insert(ins); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := c.Insert(ins); err != nil {
		t.Fatalf("merging insert: %v", err)
	}
	c.ReportReuse(ins.Signature(), true)
	c.ReportReuse(ins.Signature(), false)

	records := c.Snapshot()
	if len(records) != 1 {
		t.Fatalf("snapshot: got %d records, want 1", len(records))
	}
	if records[0].Attempts != 2 || records[0].Successes != 1 {
		t.Errorf("bookkeeping: got %d/%d, want 2/1", records[0].Successes, records[0].Attempts)
	}
	if records[0].Merges != 1 {
		t.Errorf("merge count: got %d, want 1", records[0].Merges)
	}

	fresh := newTestCache(t, 16)
	if err := fresh.Restore(records); err != nil {
		t.Fatalf("restore: %v", err)
	}

	got, eff, ok := fresh.Lookup(ins.Signature(), "alpha")
	if !ok {
		t.Fatal("restored entry not found")
	}
	if got.SourceDomain() != "alpha" {
		t.Errorf("source domain: got %q", got.SourceDomain())
	}
	// (1 success + 1) / (2 attempts + 2)
	if eff != 0.5 {
		t.Errorf("restored efficiency: got %g, want 0.5", eff)
	}
	if again := fresh.Snapshot(); again[0].Merges != 1 {
		t.Errorf("merge count after restore: got %d, want 1", again[0].Merges)
	}
}

func TestStats(t *testing.T) {
	c := newTestCache(t, 16)

	if s := c.Stats(); s.EntryCount != 0 {
		t.Errorf("empty stats: got %d entries", s.EntryCount)
	}

	if err := c.Insert(makeInsight(domain.Delta{1, 2}, 0.5, "alpha")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	s := c.Stats()
	if s.EntryCount != 1 {
		t.Errorf("entries: got %d, want 1", s.EntryCount)
	}
	if s.MeanTransferEfficiency != 0.5 {
		t.Errorf("mean efficiency: got %g, want 0.5", s.MeanTransferEfficiency)
	}
}
