// Package insight defines the durable directional corrections extracted from
// scored candidates. Insights are the only long-lived artifact of a search:
// candidates are disposed, insights persist in the shared cache and transfer
// across problem domains by signature.
package insight

import (
	"github.com/fullscreen-triangle/hugure/internal/domain"
)

// Insight is a small durable record: a normalized direction toward lower
// distance, how much to trust it, and where it was learned. An insight never
// references or holds a candidate.
type Insight struct {
	sig        Signature
	direction  domain.Delta
	confidence float64
	domain     string
}

// New creates an insight. The direction is cloned so the insight cannot alias
// batch-owned memory, and confidence is clipped to [0, 1].
func New(sig Signature, direction domain.Delta, confidence float64, sourceDomain string) Insight {
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return Insight{
		sig:        sig,
		direction:  direction.Clone(),
		confidence: confidence,
		domain:     sourceDomain,
	}
}

// Signature returns the domain-independent shape fingerprint.
func (i Insight) Signature() Signature { return i.sig }

// Direction returns the normalized correction toward lower total distance.
func (i Insight) Direction() domain.Delta { return i.direction }

// Confidence returns the trust weight in [0, 1].
func (i Insight) Confidence() float64 { return i.confidence }

// SourceDomain returns the problem domain the insight was learned in.
func (i Insight) SourceDomain() string { return i.domain }

// Merge combines two insights sharing a signature: the directions average
// weighted by confidence and the result keeps the stronger source domain.
// The merged confidence leans toward the higher of the two, so repeated
// agreement accumulates trust without ever exceeding 1.
func Merge(a, b Insight) Insight {
	wa, wb := a.confidence, b.confidence
	if wa+wb == 0 {
		wa, wb = 1, 1
	}

	dir := make(domain.Delta, len(a.direction))
	dir.Accumulate(a.direction, wa)
	if len(b.direction) == len(dir) {
		dir.Accumulate(b.direction, wb)
	}
	if n := dir.Normalized(); n != nil {
		dir = n
	}

	conf := max(a.confidence, b.confidence)
	conf += (1 - conf) * min(a.confidence, b.confidence) * 0.5

	src := a.domain
	if b.confidence > a.confidence {
		src = b.domain
	}
	return New(a.sig, dir, conf, src)
}
