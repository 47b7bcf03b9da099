package search

import (
	"github.com/fullscreen-triangle/hugure/internal/domain/insight"
)

// InsightCache is the shared store contract the convergence loop reads and
// writes. Implementations must support concurrent runs: per-signature
// linearizable inserts and non-blocking reads.
type InsightCache interface {
	Insert(ins insight.Insight) error
	Lookup(sig insight.Signature, requestingDomain string) (insight.Insight, float64, bool)
	ReportReuse(sig insight.Signature, improved bool)
	TransferEfficiency(sig insight.Signature) float64
}
