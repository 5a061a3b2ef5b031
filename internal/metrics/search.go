package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	DaemonBatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foofind",
			Name:      "daemon_batches_total",
			Help:      "Total number of batches sent to the search daemon",
		},
		[]string{"op", "status"}, // op: search/related/lookup/locate; status: ok/partial/error
	)

	DaemonBatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "foofind",
			Name:      "daemon_batch_duration_seconds",
			Help:      "Search daemon round-trip duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"op"},
	)

	PlanSelectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foofind",
			Name:      "plan_selected_total",
			Help:      "Which plan of a search batch produced the answer",
		},
		[]string{"position"}, // primary / fallback / default / none
	)

	CacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foofind",
			Name:      "cache_total",
			Help:      "Result cache hits, misses and skipped writes",
		},
		[]string{"cache", "result"}, // cache: search/related; result: hit/miss/skip
	)

	BlockUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foofind",
			Name:      "block_updates_total",
			Help:      "Block/unblock operations by outcome",
		},
		[]string{"status"}, // ok / mismatch / error
	)

	StatsSources = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "foofind",
			Name:      "stats_sources",
			Help:      "Sources present in the current ranking statistics snapshot",
		},
		[]string{"table"}, // rc / ra / rd
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(DaemonBatchesTotal)
	prometheus.MustRegister(DaemonBatchDuration)
	prometheus.MustRegister(PlanSelectedTotal)
	prometheus.MustRegister(CacheTotal)
	prometheus.MustRegister(BlockUpdatesTotal)
	prometheus.MustRegister(StatsSources)
	searchMetricsRegistered = true
}
