// Package problem defines the contract between a caller and one search run:
// the problem descriptor, the run budget, and the run result.
package problem

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/fullscreen-triangle/hugure/internal/domain"
)

// PayloadFunc builds the application-supplied opaque payload for a candidate
// at the given position. May be nil when the caller only needs feature
// vectors back.
type PayloadFunc func(features domain.Vector) any

// Descriptor specifies one problem instance: the feature space, the target
// the distance metric measures against, and the initial sampling window.
type Descriptor struct {
	// Domain identifies the problem instance for cross-domain insight
	// bookkeeping. Free-form, but stable per problem family.
	Domain string

	// Dimensions is the feature-vector dimensionality. Must be positive.
	Dimensions int

	// Target is the ideal feature vector the metric measures distance to.
	Target domain.Vector

	// Origin is the initial window center.
	Origin domain.Vector

	// Radius is the initial window radius.
	Radius float64

	// Seed overrides the deterministic fingerprint seed when non-zero,
	// pinning candidate generation for reproducible runs.
	Seed uint64

	// Payload builds the opaque payload attached to each candidate. Optional.
	Payload PayloadFunc
}

// Validate rejects descriptors the engine cannot run. A zero radius is not
// rejected here: the generator reports it as a degenerate window, which the
// loop is allowed to recover from once.
func (d Descriptor) Validate() error {
	if d.Dimensions <= 0 {
		return fmt.Errorf("%w: dimensions must be positive, got %d",
			domain.ErrInvalidConfig, d.Dimensions)
	}
	if len(d.Target) != d.Dimensions {
		return fmt.Errorf("%w: target has %d components, want %d",
			domain.ErrInvalidConfig, len(d.Target), d.Dimensions)
	}
	if len(d.Origin) != d.Dimensions {
		return fmt.Errorf("%w: origin has %d components, want %d",
			domain.ErrInvalidConfig, len(d.Origin), d.Dimensions)
	}
	if d.Radius < 0 {
		return fmt.Errorf("%w: radius must not be negative, got %g",
			domain.ErrInvalidConfig, d.Radius)
	}
	return nil
}

// GenerationSeed returns the seed for candidate generation: the explicit
// Seed when set, otherwise the descriptor fingerprint. Identical problems
// generate identical candidate streams.
func (d Descriptor) GenerationSeed() uint64 {
	if d.Seed != 0 {
		return d.Seed
	}
	return d.Fingerprint()
}

// Fingerprint hashes the structural identity of the problem: domain,
// dimensionality, target and origin coordinates.
func (d Descriptor) Fingerprint() uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(d.Domain)

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(d.Dimensions))
	_, _ = h.Write(buf[:])

	for _, v := range d.Target {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		_, _ = h.Write(buf[:])
	}
	for _, v := range d.Origin {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}
