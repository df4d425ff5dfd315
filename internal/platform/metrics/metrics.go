// Package metrics owns the process prometheus registry and the pipeline collectors
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the process registry; tests may read from it directly
var Registry = prometheus.NewRegistry()

var (
	eventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sentinel",
		Name:      "events_total",
		Help:      "Graph events emitted by type.",
	}, []string{"graph", "node", "type"})

	stageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sentinel",
		Name:      "stage_duration_seconds",
		Help:      "Wall time spent in a pipeline node.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"graph", "node"})

	scorerFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sentinel",
		Name:      "scorer_failures_total",
		Help:      "Transactions whose scoring failed and were skipped by the batch driver.",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		eventsTotal,
		stageDuration,
		scorerFailures,
	)
}

// ObserveEvent counts one emitted event
func ObserveEvent(graph, node, typ string) {
	eventsTotal.WithLabelValues(graph, node, typ).Inc()
}

// ObserveStage records how long a node ran
func ObserveStage(graph, node string, d time.Duration) {
	stageDuration.WithLabelValues(graph, node).Observe(d.Seconds())
}

// ScorerFailed counts a skipped transaction
func ScorerFailed() { scorerFailures.Inc() }

// Handler serves the registry in the prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

// ScorerFailures exposes the skipped transaction counter for tests
func ScorerFailures() prometheus.Counter { return scorerFailures }
