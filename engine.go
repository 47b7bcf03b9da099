package hugure

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fullscreen-triangle/hugure/internal/domain"
	"github.com/fullscreen-triangle/hugure/internal/domain/problem"
	searchuc "github.com/fullscreen-triangle/hugure/internal/usecase/search"
)

// Problem describes one problem instance to search.
type Problem struct {
	// Domain identifies the problem family for cross-domain insight
	// bookkeeping. Free-form.
	Domain string
	// Dimensions is the feature-vector dimensionality.
	Dimensions int
	// Target is the ideal feature vector the distance metric measures
	// against.
	Target []float64
	// Origin is the initial window center.
	Origin []float64
	// Radius is the initial window radius.
	Radius float64
	// Seed pins candidate generation for reproducible runs. Zero derives a
	// deterministic seed from the problem's structural fingerprint.
	Seed uint64
	// Payload builds the opaque payload attached to each candidate.
	// Optional; the engine returns the best candidate's payload untouched.
	Payload func(features []float64) any
}

// Budget bounds one run. Exhausting it is a normal termination.
type Budget struct {
	MaxIterations int
	MaxWallClock  time.Duration
	Epsilon       float64
}

// Reason is a run's honest termination reason.
type Reason string

const (
	ReasonSuccess           = Reason(problem.ReasonSuccess)
	ReasonResourceExhausted = Reason(problem.ReasonResourceExhausted)
	ReasonLocalOptimum      = Reason(problem.ReasonLocalOptimum)
	ReasonCancelled         = Reason(problem.ReasonCancelled)
)

// Distance reports the three jointly-minimized axes and their Euclidean
// total.
type Distance struct {
	Knowledge float64
	Time      float64
	Entropy   float64
	Total     float64
}

// Result is the outcome of one search run.
type Result struct {
	RunID        string
	BestFeatures []float64
	BestPayload  any
	Distance     Distance
	Iterations   int
	Reason       Reason
}

// Engine runs searches. Safe for concurrent use; concurrent runs share only
// the insight cache.
type Engine struct {
	cache *Cache
	svc   *searchuc.Service
}

// New creates an engine.
func New(opts ...Option) (*Engine, error) {
	cfg := &engineConfig{
		batchSize: DefaultBatchSize,
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		o(cfg)
	}
	if !cfg.batchSizeSet {
		cfg.batchSize = DefaultBatchSize
	}

	cache := cfg.cache
	if cache == nil {
		var err error
		cache, err = NewCache(cfg.cacheCapacity)
		if err != nil {
			return nil, fmt.Errorf("hugure: %w", err)
		}
	}

	svc := searchuc.New(cache.inner, cfg.logger, searchuc.Config{
		BatchSize:  cfg.batchSize,
		Workers:    cfg.workers,
		BiasFactor: cfg.bias,
		Threshold:  cfg.threshold,
		Selector:   cfg.selector,
	})
	return &Engine{cache: cache, svc: svc}, nil
}

// Run executes one search run to termination. The caller always receives
// either a result with an honest termination reason or a typed error; the
// engine never panics on malformed but well-typed input.
func (e *Engine) Run(ctx context.Context, p Problem, b Budget) (Result, error) {
	desc := problem.Descriptor{
		Domain:     p.Domain,
		Dimensions: p.Dimensions,
		Target:     domain.Vector(p.Target),
		Origin:     domain.Vector(p.Origin),
		Radius:     p.Radius,
		Seed:       p.Seed,
	}
	if p.Payload != nil {
		payload := p.Payload
		desc.Payload = func(features domain.Vector) any {
			return payload([]float64(features))
		}
	}

	res, err := e.svc.Run(ctx, desc, problem.Budget{
		MaxIterations: b.MaxIterations,
		MaxWallClock:  b.MaxWallClock,
		Epsilon:       b.Epsilon,
	})
	if err != nil {
		return Result{}, fmt.Errorf("hugure: %w", err)
	}

	return Result{
		RunID:        res.RunID.String(),
		BestFeatures: []float64(res.BestFeatures),
		BestPayload:  res.BestPayload,
		Distance: Distance{
			Knowledge: res.Distance.Knowledge(),
			Time:      res.Distance.Time(),
			Entropy:   res.Distance.Entropy(),
			Total:     res.Distance.Total(),
		},
		Iterations: res.Iterations,
		Reason:     Reason(res.Reason),
	}, nil
}

// Cache returns the engine's insight cache handle for sharing with other
// engines.
func (e *Engine) Cache() *Cache { return e.cache }

// CacheStats returns the cache's observability snapshot. Read-only.
func (e *Engine) CacheStats() CacheStats { return e.cache.Stats() }
