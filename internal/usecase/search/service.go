// Package search drives the convergence loop: window, generate, score,
// extract, cache, dispose, re-window. Peak memory stays within a constant
// factor of batch size plus cache capacity no matter how large the nominal
// solution space or how many iterations run.
package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fullscreen-triangle/hugure/internal/domain"
	"github.com/fullscreen-triangle/hugure/internal/domain/insight"
	"github.com/fullscreen-triangle/hugure/internal/domain/problem"
	domwin "github.com/fullscreen-triangle/hugure/internal/domain/window"
	"github.com/fullscreen-triangle/hugure/internal/metrics"
	"github.com/fullscreen-triangle/hugure/internal/usecase/extract"
	"github.com/fullscreen-triangle/hugure/internal/usecase/generate"
	"github.com/fullscreen-triangle/hugure/internal/usecase/metric"
	windowuc "github.com/fullscreen-triangle/hugure/internal/usecase/window"
)

// Boundary bias presets for candidate generation. Higher levels over-sample
// deliberately extreme candidates, trading acceptance odds for insight yield.
const (
	BiasUniform  = 1.0
	BiasMild     = 1.5
	BiasStandard = 2.0
	BiasHigh     = 4.0
	BiasExtreme  = 8.0
)

// Config tunes one search service.
type Config struct {
	// BatchSize is the number of candidates per iteration. Must be positive;
	// a zero batch size is rejected before the first iteration.
	BatchSize int
	// Workers is the scoring fan-out width. Defaults to GOMAXPROCS capped
	// at 8.
	Workers int
	// BiasFactor is the boundary over-sampling factor, >= 1. Defaults to
	// BiasStandard.
	BiasFactor float64
	// Threshold is the extractor's confidence floor. Zero selects the
	// extractor default.
	Threshold float64
	// Selector tunes the window selector.
	Selector windowuc.Config
}

// Service runs searches against one shared insight cache. Safe for
// concurrent use: each run owns all of its state except the cache.
type Service struct {
	cache  InsightCache
	logger *zap.Logger
	cfg    Config

	// genHook observes the run's generator; used by disposal tests.
	genHook func(*generate.Generator)
}

// New creates a search service.
func New(cache InsightCache, logger *zap.Logger, cfg Config) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
		if cfg.Workers > 8 {
			cfg.Workers = 8
		}
	}
	if cfg.BiasFactor < 1 {
		cfg.BiasFactor = BiasStandard
	}
	return &Service{cache: cache, logger: logger, cfg: cfg}
}

// scored pairs a candidate with its measured distance for the extraction
// pass. Scored slices live only within one iteration.
type scored struct {
	candidate domain.Candidate
	distance  domain.Distance
}

// reuseState tracks one transferred insight awaiting its outcome report.
type reuseState struct {
	sig      insight.Signature
	reported bool
}

// Run executes one search run to termination. Budget exhaustion and local
// optima are normal results with honest termination reasons; errors are
// reserved for invalid configuration and component contract violations.
func (s *Service) Run(ctx context.Context, desc problem.Descriptor, budget problem.Budget) (problem.Result, error) {
	if err := desc.Validate(); err != nil {
		return problem.Result{}, err
	}
	if err := budget.Validate(); err != nil {
		return problem.Result{}, err
	}
	if s.cfg.BatchSize <= 0 {
		return problem.Result{}, fmt.Errorf("%w: batch size must be positive, got %d",
			domain.ErrInvalidConfig, s.cfg.BatchSize)
	}

	runID := uuid.New()
	log := s.logger.With(
		zap.String("run_id", runID.String()),
		zap.String("domain", desc.Domain),
	)
	start := time.Now()

	met := metric.New(desc.Target)
	gen := generate.New(desc.Dimensions, desc.GenerationSeed(), desc.Payload)
	if s.genHook != nil {
		s.genHook(gen)
	}
	ext := extract.New(desc.Domain, s.cfg.Threshold)

	// The origin's own distance is the baseline a transferred insight must
	// beat to count as a successful reuse.
	originDist, err := met.Measure(domain.NewCandidate(desc.Origin, nil))
	if err != nil {
		return problem.Result{}, fmt.Errorf("measure origin: %w", err)
	}

	initialBias, reuse := s.warmStart(desc, log)
	sel := windowuc.New(domwin.New(desc.Origin, desc.Radius, initialBias), s.cfg.Selector)

	run := &runState{
		id:       runID,
		desc:     desc,
		budget:   budget,
		log:      log,
		start:    start,
		met:      met,
		gen:      gen,
		ext:      ext,
		sel:      sel,
		reuse:    reuse,
		baseline: originDist,
	}
	return s.loop(ctx, run)
}

// runState is the per-run working set. Discarded at run end; only insights
// contributed to the shared cache outlive it.
type runState struct {
	id       uuid.UUID
	desc     problem.Descriptor
	budget   problem.Budget
	log      *zap.Logger
	start    time.Time
	met      *metric.Metric
	gen      *generate.Generator
	ext      *extract.Extractor
	sel      *windowuc.Selector
	reuse    *reuseState
	baseline domain.Distance

	iterations int
	resetUsed  bool
}

func (s *Service) loop(ctx context.Context, run *runState) (problem.Result, error) {
	for run.iterations < run.budget.MaxIterations {
		if ctx.Err() != nil {
			return s.finish(run, problem.ReasonCancelled), nil
		}
		if run.budget.MaxWallClock > 0 && time.Since(run.start) > run.budget.MaxWallClock {
			return s.finish(run, problem.ReasonResourceExhausted), nil
		}

		win := run.sel.Current()
		batch, err := run.gen.GenerateBatch(win, s.cfg.BatchSize, s.cfg.BiasFactor)
		if err != nil {
			if errors.Is(err, domain.ErrDegenerateWindow) && !run.resetUsed {
				// One recovery attempt: back to the initial window.
				run.resetUsed = true
				run.log.Warn("Degenerate window, resetting to initial",
					zap.Float64("radius", win.Radius()))
				run.sel.Reset()
				continue
			}
			return problem.Result{}, fmt.Errorf("generate batch: %w", err)
		}
		run.iterations++

		done, reason, err := s.iterate(ctx, run, batch)
		if err != nil {
			return problem.Result{}, err
		}
		if done {
			return s.finish(run, reason), nil
		}
	}
	return s.finish(run, problem.ReasonResourceExhausted), nil
}

// iterate runs one full cycle over a batch. The batch is disposed on every
// path out, before the selector is advanced: the bounded-memory guarantee
// depends on that ordering.
func (s *Service) iterate(
	ctx context.Context, run *runState, batch *generate.Batch,
) (done bool, reason problem.Reason, err error) {
	results, err := s.scoreBatch(ctx, run.met, batch)
	if err != nil {
		batch.Dispose()
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return true, problem.ReasonCancelled, nil
		}
		return false, "", err
	}

	_, _, prevDist, hadBest := run.ext.Best()

	var accepted []windowuc.Weighted
	for _, sc := range results {
		ins := run.ext.Extract(sc.candidate, sc.distance)
		if ins == nil {
			continue
		}
		if err := s.cache.Insert(*ins); err != nil {
			batch.Dispose()
			return false, "", fmt.Errorf("cache insert: %w", err)
		}
		accepted = append(accepted, windowuc.Weighted{
			Insight:  *ins,
			Transfer: s.cache.TransferEfficiency(ins.Signature()),
		})
	}

	metrics.CandidatesGeneratedTotal.WithLabelValues(run.desc.Domain).Add(float64(len(results)))
	metrics.InsightsExtractedTotal.WithLabelValues(run.desc.Domain).Add(float64(len(accepted)))

	best, _, bestDist, _ := run.ext.Best()
	improved := !hadBest || bestDist.Better(prevDist)

	// Dispose before requesting the next window.
	batch.Dispose()

	if run.reuse != nil && !run.reuse.reported {
		run.reuse.reported = true
		s.cache.ReportReuse(run.reuse.sig, bestDist.Better(run.baseline))
	}

	if bestDist.Within(run.budget.Epsilon) {
		return true, problem.ReasonSuccess, nil
	}

	run.sel.Advance(best, improved, accepted)
	if run.sel.Phase() == domwin.PhaseConverged {
		return true, problem.ReasonLocalOptimum, nil
	}
	return false, "", nil
}

// scoreBatch fans candidate generation and scoring out across the worker
// pool and fans the scored results back in. Results are ordered best-first
// so extraction is deterministic regardless of worker interleaving.
func (s *Service) scoreBatch(
	ctx context.Context, met *metric.Metric, batch *generate.Batch,
) ([]scored, error) {
	results := make(chan scored, batch.Size())

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < s.cfg.Workers; i++ {
		g.Go(func() error {
			for {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				c, ok := batch.Next()
				if !ok {
					return nil
				}
				d, err := met.Measure(c)
				if err != nil {
					return fmt.Errorf("measure candidate: %w", err)
				}
				results <- scored{candidate: c, distance: d}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(results)

	out := make([]scored, 0, len(results))
	for sc := range results {
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].distance.Total() < out[j].distance.Total()
	})
	return out, nil
}

// warmStart probes the cache with the problem's structural signature and, on
// a hit, seeds the initial window bias with the transferred direction. The
// bias magnitude carries the trust weight: confidence times transfer
// efficiency times the distance prior, so a proven insight steers generation
// harder than a speculative one.
func (s *Service) warmStart(desc problem.Descriptor, log *zap.Logger) (domain.Delta, *reuseState) {
	offset := desc.Target.Sub(desc.Origin)
	probeDir := offset.Normalized()
	if probeDir == nil {
		return nil, nil
	}
	probe := insight.SignatureOf(probeDir)

	ins, eff, ok := s.cache.Lookup(probe, desc.Domain)
	if !ok || len(ins.Direction()) != desc.Dimensions {
		return nil, nil
	}
	dir := ins.Direction().Normalized()
	if dir == nil {
		return nil, nil
	}

	weight := ins.Confidence() * eff * transferPrior(offset.Norm())
	log.Info("Warm start from transferred insight",
		zap.String("source_domain", ins.SourceDomain()),
		zap.Float64("confidence", ins.Confidence()),
		zap.Float64("transfer_efficiency", eff),
		zap.Float64("weight", weight),
	)
	return dir.Scaled(weight), &reuseState{sig: ins.Signature()}
}

// transferPrior discounts a transferred direction by how far the run starts
// from its target: 1/(1+d), clamped to [0.1, 1].
func transferPrior(startDistance float64) float64 {
	p := 1 / (1 + startDistance)
	return math.Min(math.Max(p, 0.1), 1)
}

// finish assembles the run result and records run-level telemetry.
func (s *Service) finish(run *runState, reason problem.Reason) problem.Result {
	best, payload, dist, hasBest := run.ext.Best()

	res := problem.Result{
		RunID:      run.id,
		Distance:   dist,
		Iterations: run.iterations,
		Reason:     reason,
	}
	if hasBest {
		res.BestFeatures = best.Clone()
		res.BestPayload = payload
	}

	elapsed := time.Since(run.start)
	metrics.SearchRunsTotal.WithLabelValues(run.desc.Domain, string(reason)).Inc()
	metrics.SearchIterationsTotal.WithLabelValues(run.desc.Domain).Add(float64(run.iterations))
	metrics.SearchDuration.WithLabelValues(run.desc.Domain).Observe(elapsed.Seconds())

	run.log.Info("Search run finished",
		zap.String("reason", string(reason)),
		zap.Int("iterations", run.iterations),
		zap.Float64("best_total", dist.Total()),
		zap.Duration("elapsed", elapsed),
	)
	return res
}
