// ABOUTME: Prometheus metrics for publish cycles, source fetches, and history resets.
// ABOUTME: Exposes a dedicated registry and an HTTP handler for scheduled mode.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every riddleking collector.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		CyclesTotal,
		HistoryResetsTotal,
		SourceFetchFailures,
		PublishDuration,
	)
}

// CyclesTotal counts publish cycles by outcome.
var CyclesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "riddleking_cycles_total",
		Help: "Publish cycles by outcome.",
	},
	[]string{"status"}, // posted | select_failed | publish_failed | skipped
)

// HistoryResetsTotal counts full history clears after exhaustion.
var HistoryResetsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "riddleking_history_resets_total",
		Help: "Times the posted history was cleared because every riddle was used.",
	},
)

// SourceFetchFailures counts failed candidate fetches per source.
var SourceFetchFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "riddleking_source_fetch_failures_total",
		Help: "Failed candidate fetches by source.",
	},
	[]string{"source"},
)

// PublishDuration observes publish call latency.
var PublishDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "riddleking_publish_duration_seconds",
		Help:    "Latency of publish calls.",
		Buckets: prometheus.DefBuckets,
	},
)

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
