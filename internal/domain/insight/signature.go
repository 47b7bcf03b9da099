package insight

import (
	"math"
	"math/bits"

	"github.com/fullscreen-triangle/hugure/internal/domain"
)

// signatureSlots is the number of direction slots encoded in a signature.
// Feature components fold into slots round-robin, so vectors of any
// dimensionality map onto the same 64-bit encoding and stay comparable
// across unrelated problem domains.
const signatureSlots = 32

// Signature is a domain-independent fingerprint of an insight direction's
// structural shape. The low 32 bits encode the sign pattern of the folded
// direction, the high 32 bits a coarse magnitude bin per slot. Two insights
// with equal signatures are transferable regardless of originating domain,
// and nearby shapes stay nearby under Hamming distance.
type Signature uint64

// SignatureOf computes the signature of a direction. The direction does not
// need to be normalized; only its shape matters.
func SignatureOf(dir domain.Delta) Signature {
	if len(dir) == 0 {
		return 0
	}

	var slots [signatureSlots]float64
	for i, c := range dir {
		slots[i%signatureSlots] += c
	}

	norm := domain.Delta(slots[:]).Norm()
	if norm == 0 {
		return 0
	}
	// A flat shape spreads 1/sqrt(slots) of the norm per slot; half of that
	// separates "present" from "negligible".
	threshold := 0.5 * norm / math.Sqrt(float64(signatureSlots))

	var sig Signature
	for i, s := range slots {
		if s > 0 {
			sig |= 1 << uint(i)
		}
		if math.Abs(s) >= threshold {
			sig |= 1 << uint(i+signatureSlots)
		}
	}
	return sig
}

// Hamming returns the number of differing bits between two signatures.
// Smaller means structurally closer shapes.
func (s Signature) Hamming(o Signature) int {
	return bits.OnesCount64(uint64(s ^ o))
}
