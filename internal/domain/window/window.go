// Package window defines the bounded sub-region of the solution space the
// generator samples from, and the phases of windowed exploration.
package window

import (
	"github.com/fullscreen-triangle/hugure/internal/domain"
)

// Phase is the exploration state of the window selector.
type Phase string

const (
	// PhaseContracting means the window is shrinking around improvements.
	PhaseContracting Phase = "contracting"
	// PhaseExpanding means the window is growing to escape stagnation.
	PhaseExpanding Phase = "expanding"
	// PhaseConverged means expansion reached its cap without improvement;
	// the loop terminates with a local-optimum result.
	PhaseConverged Phase = "converged"
)

// Window describes where the next generation batch samples: a center, a
// radius, and an optional directional bias skewing samples along a known
// good direction. Windows are values; the selector builds a fresh one each
// iteration and nothing outside the owning run ever sees them.
type Window struct {
	center domain.Vector
	radius float64
	bias   domain.Delta
}

// New creates a window. The center is cloned; bias may be nil.
func New(center domain.Vector, radius float64, bias domain.Delta) Window {
	var b domain.Delta
	if bias != nil {
		b = bias.Clone()
	}
	return Window{center: center.Clone(), radius: radius, bias: b}
}

// Center returns the window center.
func (w Window) Center() domain.Vector { return w.center }

// Radius returns the sampling radius.
func (w Window) Radius() float64 { return w.radius }

// Bias returns the directional sampling skew, or nil when sampling is
// isotropic.
func (w Window) Bias() domain.Delta { return w.bias }
