package problem

import (
	"github.com/google/uuid"

	"github.com/fullscreen-triangle/hugure/internal/domain"
)

// Reason is the honest termination reason of a search run.
type Reason string

const (
	// ReasonSuccess means the best total distance reached epsilon.
	ReasonSuccess Reason = "success"
	// ReasonResourceExhausted means the iteration or wall-clock budget ran
	// out before convergence. The best-so-far result is still returned.
	ReasonResourceExhausted Reason = "resource_exhausted"
	// ReasonLocalOptimum means the window selector converged: expansion hit
	// its cap without finding further improvement.
	ReasonLocalOptimum Reason = "local_optimum"
	// ReasonCancelled means the caller's context was cancelled at an
	// iteration boundary.
	ReasonCancelled Reason = "cancelled"
)

// Result is the outcome of one search run. Only the running-best candidate's
// features and payload survive; everything else generated during the run has
// been disposed.
type Result struct {
	// RunID identifies the run in logs and metrics.
	RunID uuid.UUID

	// BestFeatures is the feature vector of the best candidate seen.
	// Nil when the run terminated before scoring a single candidate.
	BestFeatures domain.Vector

	// BestPayload is the opaque payload of the best candidate seen.
	BestPayload any

	// Distance is the final best distance.
	Distance domain.Distance

	// Iterations is the number of loop iterations executed.
	Iterations int

	// Reason records why the run stopped.
	Reason Reason
}
