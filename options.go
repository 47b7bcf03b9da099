package hugure

import (
	"go.uber.org/zap"

	searchuc "github.com/fullscreen-triangle/hugure/internal/usecase/search"
	windowuc "github.com/fullscreen-triangle/hugure/internal/usecase/window"
)

// Boundary bias presets, from uniform sampling to extreme boundary
// over-sampling. Higher levels generate deliberately implausible candidates
// because those carry the most directional information per unit of
// generation cost.
const (
	BiasUniform  = searchuc.BiasUniform
	BiasMild     = searchuc.BiasMild
	BiasStandard = searchuc.BiasStandard
	BiasHigh     = searchuc.BiasHigh
	BiasExtreme  = searchuc.BiasExtreme
)

// DefaultBatchSize is the per-iteration candidate count when WithBatchSize
// is not given.
const DefaultBatchSize = 64

// Option configures an Engine.
type Option func(*engineConfig)

type engineConfig struct {
	cache         *Cache
	cacheCapacity int
	logger        *zap.Logger
	batchSize     int
	batchSizeSet  bool
	workers       int
	bias          float64
	threshold     float64
	selector      windowuc.Config
}

// WithCache shares an existing insight cache with this engine, enabling
// cross-domain insight transfer between engines and runs.
func WithCache(c *Cache) Option {
	return func(cfg *engineConfig) { cfg.cache = c }
}

// WithCacheCapacity sets the entry cap of the engine-owned cache. Ignored
// when WithCache supplies a shared cache.
func WithCacheCapacity(capacity int) Option {
	return func(cfg *engineConfig) { cfg.cacheCapacity = capacity }
}

// WithLogger attaches a logger. Without it the engine is silent.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *engineConfig) { cfg.logger = logger }
}

// WithBatchSize sets the number of candidates generated per iteration. The
// value is validated at Run: a non-positive batch size is a configuration
// error.
func WithBatchSize(n int) Option {
	return func(cfg *engineConfig) {
		cfg.batchSize = n
		cfg.batchSizeSet = true
	}
}

// WithWorkers sets the scoring fan-out width.
func WithWorkers(n int) Option {
	return func(cfg *engineConfig) { cfg.workers = n }
}

// WithBias sets the boundary over-sampling factor (>= 1); see the Bias
// presets.
func WithBias(factor float64) Option {
	return func(cfg *engineConfig) { cfg.bias = factor }
}

// WithThreshold sets the extractor's confidence floor tau.
func WithThreshold(tau float64) Option {
	return func(cfg *engineConfig) { cfg.threshold = tau }
}

// WithStagnationLimit sets the consecutive non-improving iterations after
// which a fully expanded window converges to a local optimum.
func WithStagnationLimit(n int) Option {
	return func(cfg *engineConfig) { cfg.selector.StagnationLimit = n }
}

// WithWindowTuning sets the window shrink, grow, and step factors. Zero
// values keep the defaults.
func WithWindowTuning(shrink, grow, step float64) Option {
	return func(cfg *engineConfig) {
		cfg.selector.ShrinkFactor = shrink
		cfg.selector.GrowFactor = grow
		cfg.selector.StepFactor = step
	}
}
