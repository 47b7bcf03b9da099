package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search and insight-cache Prometheus metrics.
var (
	SearchRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hugure",
			Name:      "search_runs_total",
			Help:      "Total number of search runs by termination reason",
		},
		[]string{"domain", "reason"},
	)

	SearchIterationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hugure",
			Name:      "search_iterations_total",
			Help:      "Total convergence loop iterations",
		},
		[]string{"domain"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hugure",
			Name:      "search_duration_seconds",
			Help:      "Search run duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"domain"},
	)

	CandidatesGeneratedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hugure",
			Name:      "candidates_generated_total",
			Help:      "Total candidates generated and disposed",
		},
		[]string{"domain"},
	)

	InsightsExtractedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hugure",
			Name:      "insights_extracted_total",
			Help:      "Total insights extracted from scored candidates",
		},
		[]string{"domain"},
	)

	CacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hugure",
			Name:      "insight_cache_lookups_total",
			Help:      "Insight cache lookups by result (hit, near_hit, miss)",
		},
		[]string{"result"},
	)

	CacheCrossDomainHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hugure",
			Name:      "insight_cache_cross_domain_hits_total",
			Help:      "Cache hits served from a different source domain",
		},
	)

	CacheEvictionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hugure",
			Name:      "insight_cache_evictions_total",
			Help:      "Insights evicted by the capacity bound",
		},
	)

	CacheEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hugure",
			Name:      "insight_cache_entries",
			Help:      "Current number of cached insights",
		},
	)

	CacheTransferEfficiency = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hugure",
			Name:      "insight_cache_mean_transfer_efficiency",
			Help:      "Mean cross-domain transfer efficiency across cached insights",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers the engine metrics. Must be called once
// from main; library embedders that skip it simply get unregistered
// collectors, which still count but are not exported.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRunsTotal)
	prometheus.MustRegister(SearchIterationsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(CandidatesGeneratedTotal)
	prometheus.MustRegister(InsightsExtractedTotal)
	prometheus.MustRegister(CacheLookupsTotal)
	prometheus.MustRegister(CacheCrossDomainHitsTotal)
	prometheus.MustRegister(CacheEvictionsTotal)
	prometheus.MustRegister(CacheEntries)
	prometheus.MustRegister(CacheTransferEfficiency)
	searchMetricsRegistered = true
}
