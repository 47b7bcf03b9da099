package problem

import (
	"fmt"
	"time"

	"github.com/fullscreen-triangle/hugure/internal/domain"
)

// Budget bounds one search run. Exhausting it is a normal termination, not
// an error: the caller still receives the best result found.
type Budget struct {
	// MaxIterations caps the number of convergence-loop iterations.
	MaxIterations int

	// MaxWallClock caps the run duration, checked at iteration boundaries.
	// Zero means no wall-clock limit.
	MaxWallClock time.Duration

	// Epsilon is the acceptance threshold: the run succeeds once the best
	// total distance drops to or below it.
	Epsilon float64
}

// Validate rejects budgets the engine cannot run against.
func (b Budget) Validate() error {
	if b.MaxIterations <= 0 {
		return fmt.Errorf("%w: max iterations must be positive, got %d",
			domain.ErrInvalidConfig, b.MaxIterations)
	}
	if b.MaxWallClock < 0 {
		return fmt.Errorf("%w: max wall clock must not be negative, got %s",
			domain.ErrInvalidConfig, b.MaxWallClock)
	}
	if b.Epsilon < 0 {
		return fmt.Errorf("%w: epsilon must not be negative, got %g",
			domain.ErrInvalidConfig, b.Epsilon)
	}
	return nil
}
