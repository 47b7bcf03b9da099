// Package window selects the next sampling window from accumulated insights:
// contract around improvement, expand to escape stagnation, converge when
// expansion is exhausted.
package window

import (
	"github.com/fullscreen-triangle/hugure/internal/domain"
	"github.com/fullscreen-triangle/hugure/internal/domain/insight"
	domwin "github.com/fullscreen-triangle/hugure/internal/domain/window"
)

// Defaults for the selector tuning knobs.
const (
	DefaultShrinkFactor    = 0.9
	DefaultGrowFactor      = 1.5
	DefaultStepFactor      = 0.25
	DefaultStagnationLimit = 20
)

// Config tunes the selector. Zero values select the defaults.
type Config struct {
	// ShrinkFactor multiplies the radius on improvement. Must be in (0, 1).
	ShrinkFactor float64
	// GrowFactor multiplies the radius on stagnation, capped at the initial
	// radius. Must be > 1.
	GrowFactor float64
	// StepFactor scales the center move per iteration relative to the radius.
	StepFactor float64
	// StagnationLimit is the number of consecutive non-improving iterations
	// after which a fully expanded window converges.
	StagnationLimit int
}

func (c Config) withDefaults() Config {
	if c.ShrinkFactor <= 0 || c.ShrinkFactor >= 1 {
		c.ShrinkFactor = DefaultShrinkFactor
	}
	if c.GrowFactor <= 1 {
		c.GrowFactor = DefaultGrowFactor
	}
	if c.StepFactor <= 0 {
		c.StepFactor = DefaultStepFactor
	}
	if c.StagnationLimit <= 0 {
		c.StagnationLimit = DefaultStagnationLimit
	}
	return c
}

// Weighted pairs an insight with the trust the cache has accumulated for its
// signature across domains.
type Weighted struct {
	Insight  insight.Insight
	Transfer float64
}

// Selector narrows the region of interest each iteration. Single-threaded
// per run; never shared.
type Selector struct {
	cfg        Config
	initial    domwin.Window
	current    domwin.Window
	maxRadius  float64
	stagnation int
	phase      domwin.Phase
}

// New creates a selector starting from the initial window. The initial
// radius is also the expansion cap.
func New(initial domwin.Window, cfg Config) *Selector {
	return &Selector{
		cfg:       cfg.withDefaults(),
		initial:   initial,
		current:   initial,
		maxRadius: initial.Radius(),
		phase:     domwin.PhaseContracting,
	}
}

// Current returns the window the next batch should sample.
func (s *Selector) Current() domwin.Window { return s.current }

// Phase returns the exploration phase after the last Advance.
func (s *Selector) Phase() domwin.Phase { return s.phase }

// Stagnation returns the count of consecutive non-improving iterations.
func (s *Selector) Stagnation() int { return s.stagnation }

// Advance folds the iteration's accepted insights into one aggregate
// direction, weighted by confidence x transfer efficiency, recenters the
// window on the running best nudged along that direction, and adapts the
// radius: geometric shrink on improvement, capped expansion on stagnation.
func (s *Selector) Advance(best domain.Vector, improved bool, insights []Weighted) domwin.Window {
	center := s.current.Center()
	if best != nil {
		center = best
	}

	var aggregate domain.Delta
	if len(insights) > 0 {
		aggregate = make(domain.Delta, len(center))
		for _, wi := range insights {
			dir := wi.Insight.Direction()
			if len(dir) != len(aggregate) {
				continue
			}
			aggregate.Accumulate(dir, wi.Insight.Confidence()*wi.Transfer)
		}
		aggregate = aggregate.Normalized()
	}

	radius := s.current.Radius()
	if aggregate != nil {
		center = center.Translate(aggregate, s.cfg.StepFactor*radius)
	}

	if improved {
		s.stagnation = 0
		radius *= s.cfg.ShrinkFactor
		s.phase = domwin.PhaseContracting
	} else {
		s.stagnation++
		radius *= s.cfg.GrowFactor
		if radius >= s.maxRadius {
			radius = s.maxRadius
			if s.stagnation >= s.cfg.StagnationLimit {
				s.phase = domwin.PhaseConverged
			} else {
				s.phase = domwin.PhaseExpanding
			}
		} else {
			s.phase = domwin.PhaseExpanding
		}
	}

	s.current = domwin.New(center, radius, aggregate)
	return s.current
}

// Reset restores the initial window. The loop uses it as the single recovery
// attempt after a degenerate window.
func (s *Selector) Reset() {
	s.current = s.initial
	s.stagnation = 0
	s.phase = domwin.PhaseContracting
}
