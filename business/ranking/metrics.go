package ranking

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SuggestCacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "suggest_cache_lookups_total",
			Help: "Count of result cache lookups by feature and outcome.",
		},
		[]string{"feature", "outcome"},
	)

	SuggestSourceFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "suggest_source_failures_total",
			Help: "Count of candidate source failures or timeouts by feature and strategy.",
		},
		[]string{"feature", "strategy"},
	)

	SuggestCandidatesGathered = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "suggest_candidates_gathered",
			Help:    "Number of raw candidates gathered per request before fusion.",
			Buckets: []float64{0, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"feature"},
	)
)

func init() {
	prometheus.MustRegister(
		SuggestCacheLookupsTotal,
		SuggestSourceFailuresTotal,
		SuggestCandidatesGathered,
	)
}
