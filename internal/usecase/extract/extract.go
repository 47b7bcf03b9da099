// Package extract derives durable insights from scored candidates. This is
// the crux of disposable generation: the extractor retains one running-best
// feature vector per run and nothing else, which is what allows the loop to
// throw away every batch whole.
package extract

import (
	"github.com/fullscreen-triangle/hugure/internal/domain"
	"github.com/fullscreen-triangle/hugure/internal/domain/insight"
)

// DefaultThreshold is the default confidence floor below which a
// non-improving candidate yields no insight.
const DefaultThreshold = 0.05

// antiDirectionDamping discounts insights learned from worsening candidates:
// knowing where not to go is useful but weaker evidence than an observed
// improvement.
const antiDirectionDamping = 0.5

// Extractor turns scored candidates into insights for one search run. It is
// single-threaded by contract: the loop feeds it candidates sequentially
// after the parallel scoring fan-in.
type Extractor struct {
	sourceDomain string
	threshold    float64

	best        domain.Vector
	bestPayload any
	bestDist    domain.Distance
	hasBest     bool
}

// New creates an extractor. threshold <= 0 selects DefaultThreshold.
func New(sourceDomain string, threshold float64) *Extractor {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Extractor{sourceDomain: sourceDomain, threshold: threshold}
}

// Extract inspects one scored candidate and returns the insight it carries,
// or nil when there is none. The first candidate seeds the running best. The
// returned insight owns its own memory; nothing references the candidate
// afterwards.
func (e *Extractor) Extract(c domain.Candidate, d domain.Distance) *insight.Insight {
	if !e.hasBest {
		e.adopt(c, d)
		return nil
	}

	prev := e.bestDist
	improvement := prev.Total() - d.Total()
	// Relative improvement keeps confidence scale-free across problems.
	rel := improvement / (prev.Total() + 1e-12)

	var dir domain.Delta
	var confidence float64

	if d.Better(prev) {
		dir = c.Features().Sub(e.best).Normalized()
		confidence = rel
		e.adopt(c, d)
	} else {
		// A worsening candidate still points away from bad territory.
		dir = domain.Vector(e.best).Sub(c.Features()).Normalized()
		confidence = -rel * antiDirectionDamping
		if !d.ImprovesAxis(prev) && confidence < e.threshold {
			return nil
		}
	}

	if dir == nil {
		return nil
	}
	if confidence > 1 {
		confidence = 1
	}

	ins := insight.New(insight.SignatureOf(dir), dir, confidence, e.sourceDomain)
	return &ins
}

// Best returns the running-best feature vector, payload, and distance.
func (e *Extractor) Best() (domain.Vector, any, domain.Distance, bool) {
	return e.best, e.bestPayload, e.bestDist, e.hasBest
}

// adopt clones the candidate's features into the running best so the batch
// can be disposed without the extractor aliasing freed candidate memory.
func (e *Extractor) adopt(c domain.Candidate, d domain.Distance) {
	e.best = c.Features().Clone()
	e.bestPayload = c.Payload()
	e.bestDist = d
	e.hasBest = true
}
