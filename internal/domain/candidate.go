package domain

// Candidate is one ephemeral point in the solution space under evaluation.
// A candidate is owned by the batch that produced it, never outlives one
// iteration of the convergence loop, and is never persisted. Anything worth
// keeping is extracted into an insight before the batch is disposed.
type Candidate struct {
	features Vector
	payload  any
}

// NewCandidate creates a candidate from a feature vector and an opaque
// application payload.
func NewCandidate(features Vector, payload any) Candidate {
	return Candidate{features: features, payload: payload}
}

// Features returns the candidate's position in feature space.
func (c Candidate) Features() Vector { return c.features }

// Payload returns the application-supplied opaque payload.
func (c Candidate) Payload() any { return c.payload }
