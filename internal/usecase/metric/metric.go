// Package metric computes the three-axis distance between a candidate and
// the problem target.
package metric

import (
	"math"

	"github.com/fullscreen-triangle/hugure/internal/domain"
)

// Metric measures candidates against a fixed target vector. It holds no
// mutable state, so one instance is safe to share across scoring workers.
type Metric struct {
	target domain.Vector
}

// New creates a metric for the given target vector.
func New(target domain.Vector) *Metric {
	return &Metric{target: target.Clone()}
}

// Measure computes the distance from the candidate to the target. The
// feature delta is partitioned round-robin into the knowledge, time, and
// entropy axes; each axis is the Euclidean norm of its partition, and the
// total is the Euclidean norm of the axes. A candidate with the wrong
// dimensionality is a contract violation and is never given a default
// distance.
func (m *Metric) Measure(c domain.Candidate) (domain.Distance, error) {
	features := c.Features()
	if len(features) != len(m.target) {
		return domain.Distance{}, domain.NewDimensionMismatch(len(m.target), len(features))
	}

	var sums [3]float64
	for i, f := range features {
		d := f - m.target[i]
		sums[i%3] += d * d
	}

	return domain.NewDistance(
		math.Sqrt(sums[0]),
		math.Sqrt(sums[1]),
		math.Sqrt(sums[2]),
	), nil
}

// Dimensions returns the feature dimensionality the metric expects.
func (m *Metric) Dimensions() int { return len(m.target) }
