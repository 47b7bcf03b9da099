// Package generate produces bounded batches of ephemeral candidates inside a
// sampling window. Batches are lazy, finite, and non-restartable; candidates
// exist only until the batch is disposed at the end of the iteration.
package generate

import (
	"fmt"
	"math"
	"math/rand"
	"sync/atomic"

	"github.com/fullscreen-triangle/hugure/internal/domain"
	"github.com/fullscreen-triangle/hugure/internal/domain/problem"
	"github.com/fullscreen-triangle/hugure/internal/domain/window"
)

// seedMix is the 64-bit golden-ratio constant used to derive independent
// per-candidate random streams from one batch seed.
const seedMix = 0x9E3779B97F4A7C15

// Generator creates candidate batches for one search run. Candidate streams
// are derived deterministically from the run seed, so identical problems
// replay identical batches.
type Generator struct {
	dims    int
	seed    uint64
	payload problem.PayloadFunc

	batchSeq atomic.Uint64
	open     atomic.Int64
}

// New creates a generator for a run.
func New(dims int, seed uint64, payload problem.PayloadFunc) *Generator {
	return &Generator{dims: dims, seed: seed, payload: payload}
}

// GenerateBatch starts a new batch inside the window. biasFactor >= 1
// controls boundary over-sampling: 1 samples uniformly within the window,
// higher values push samples toward the window boundary where candidates
// carry the most directional information per generation cost.
//
// The previous batch must have been disposed; the bounded-memory guarantee
// depends on at most one live batch per run.
func (g *Generator) GenerateBatch(w window.Window, size int, biasFactor float64) (*Batch, error) {
	if w.Radius() <= 0 {
		return nil, domain.NewDegenerateWindow(w.Radius())
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: batch size must be positive, got %d",
			domain.ErrInvalidConfig, size)
	}
	if biasFactor < 1 {
		biasFactor = 1
	}
	if g.open.Load() > 0 {
		return nil, fmt.Errorf("%w: previous batch still live", domain.ErrBatchDisposed)
	}

	g.open.Add(1)
	seq := g.batchSeq.Add(1)
	return &Batch{
		gen:  g,
		win:  w,
		bias: biasFactor,
		seed: g.seed ^ seq*seedMix,
		size: size,
	}, nil
}

// OpenBatches returns the number of generated batches not yet disposed.
// Anything other than zero between iterations is a disposal bug.
func (g *Generator) OpenBatches() int64 { return g.open.Load() }

// Batch is a lazy, finite, non-restartable candidate sequence. Next is safe
// to call from multiple scoring workers; each candidate draws from its own
// derived random stream, so no two calls share mutable state.
type Batch struct {
	gen  *Generator
	win  window.Window
	bias float64
	seed uint64
	size int

	cursor   atomic.Int64
	disposed atomic.Bool
}

// Size returns the number of candidates the batch will produce.
func (b *Batch) Size() int { return b.size }

// Next returns the next candidate, or false when the batch is exhausted or
// disposed.
func (b *Batch) Next() (domain.Candidate, bool) {
	if b.disposed.Load() {
		return domain.Candidate{}, false
	}
	idx := b.cursor.Add(1) - 1
	if idx >= int64(b.size) {
		return domain.Candidate{}, false
	}

	rng := rand.New(rand.NewSource(int64(b.seed ^ uint64(idx+1)*seedMix)))
	features := b.sample(rng)

	var payload any
	if b.gen.payload != nil {
		payload = b.gen.payload(features)
	}
	return domain.NewCandidate(features, payload), true
}

// Dispose releases the batch. Idempotent; the loop must call it before
// requesting the next window.
func (b *Batch) Dispose() {
	if b.disposed.CompareAndSwap(false, true) {
		b.gen.open.Add(-1)
	}
}

// sample draws one point: an isotropic direction, a radius skewed toward the
// boundary by the bias factor, and an optional shift along the window bias.
func (b *Batch) sample(rng *rand.Rand) domain.Vector {
	dims := b.gen.dims
	center := b.win.Center()

	dir := make(domain.Delta, dims)
	var norm float64
	for i := range dir {
		dir[i] = rng.NormFloat64()
		norm += dir[i] * dir[i]
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		norm = 1
	}

	// u^(1/dims) is uniform within the ball; dividing the exponent by the
	// bias factor concentrates mass at the boundary.
	r := b.win.Radius() * math.Pow(rng.Float64(), 1/(float64(dims)*b.bias))

	features := make(domain.Vector, dims)
	for i := range features {
		features[i] = center[i] + dir[i]/norm*r
	}

	if wb := b.win.Bias(); wb != nil {
		shift := b.win.Radius() * 0.5 * rng.Float64()
		for i := range features {
			features[i] += wb[i] * shift
		}
	}
	return features
}
