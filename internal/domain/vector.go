package domain

import (
	"github.com/viterin/vek"
)

// Vector is a feature vector: one point in the solution space.
type Vector []float64

// Delta is a direction in feature space, typically normalized.
type Delta []float64

// Clone returns an independent copy of the vector.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Sub returns the delta pointing from o toward v.
func (v Vector) Sub(o Vector) Delta {
	return Delta(vek.Sub(v, o))
}

// DistanceTo returns the Euclidean distance between v and o.
func (v Vector) DistanceTo(o Vector) float64 {
	return vek.Distance(v, o)
}

// Translate returns v moved by d scaled by step.
func (v Vector) Translate(d Delta, step float64) Vector {
	out := v.Clone()
	vek.Add_Inplace(out, vek.MulNumber(d, step))
	return out
}

// Clone returns an independent copy of the delta.
func (d Delta) Clone() Delta {
	out := make(Delta, len(d))
	copy(out, d)
	return out
}

// Norm returns the Euclidean length of the delta.
func (d Delta) Norm() float64 {
	return vek.Norm(d)
}

// Normalized returns a unit-length copy of the delta, or nil if the delta has
// zero length.
func (d Delta) Normalized() Delta {
	n := vek.Norm(d)
	if n == 0 {
		return nil
	}
	out := d.Clone()
	vek.DivNumber_Inplace(out, n)
	return out
}

// Scaled returns the delta multiplied by factor.
func (d Delta) Scaled(factor float64) Delta {
	return Delta(vek.MulNumber(d, factor))
}

// Accumulate adds o scaled by weight into d in place. Used to fold multiple
// weighted directions into one aggregate.
func (d Delta) Accumulate(o Delta, weight float64) {
	vek.Add_Inplace(d, vek.MulNumber(o, weight))
}
