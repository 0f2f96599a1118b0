package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the suggestion HTTP handlers, by feature
	SuggestLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "suggest_request_latency_seconds",
		Help:    "Latency of suggestion handlers",
		Buckets: prometheus.DefBuckets,
	}, []string{"feature"})

	// Total number of suggestion requests served
	SuggestRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "suggest_requests_total",
		Help: "Total number of suggestion requests",
	}, []string{"feature", "status"})
)

func Init() {
	prometheus.MustRegister(
		SuggestLatency,
		SuggestRequests,
	)
}
