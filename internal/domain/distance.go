package domain

import "math"

// Distance is the three-axis measure of how far a candidate sits from an
// acceptable solution. Total is the Euclidean norm of the axes, never an
// average: an extreme value on any single axis dominates, so the axes can
// only be minimized jointly.
type Distance struct {
	knowledge float64
	time      float64
	entropy   float64
	total     float64
}

// NewDistance creates a distance from the three axis values.
func NewDistance(knowledge, time, entropy float64) Distance {
	return Distance{
		knowledge: knowledge,
		time:      time,
		entropy:   entropy,
		total:     math.Sqrt(knowledge*knowledge + time*time + entropy*entropy),
	}
}

// Knowledge returns the information-deficit axis.
func (d Distance) Knowledge() float64 { return d.knowledge }

// Time returns the temporal-coordination axis.
func (d Distance) Time() float64 { return d.time }

// Entropy returns the entropy-navigation axis.
func (d Distance) Entropy() float64 { return d.entropy }

// Total returns the Euclidean norm of the three axes. Zero denotes a perfect
// solution.
func (d Distance) Total() float64 { return d.total }

// Better reports whether d is strictly closer to a solution than o.
func (d Distance) Better(o Distance) bool { return d.total < o.total }

// ImprovesAxis reports whether d is strictly lower than o on at least one axis.
func (d Distance) ImprovesAxis(o Distance) bool {
	return d.knowledge < o.knowledge || d.time < o.time || d.entropy < o.entropy
}

// Within reports whether the total distance is inside the acceptance
// threshold epsilon.
func (d Distance) Within(epsilon float64) bool { return d.total <= epsilon }
