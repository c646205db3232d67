package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Extraction sources.
const (
	SourcePDF    = "pdf"
	SourceText   = "text"
	SourceWorker = "worker"
)

// Extraction outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
	OutcomeCached   = "cached"
)

var (
	extractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "requests_total",
			Help:      "Resume extractions by source and outcome.",
		},
		[]string{"source", "outcome"},
	)

	extractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "duration_seconds",
			Help:      "Resume extraction latency in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"source"},
	)

	sinkFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "sink_failures_total",
			Help:      "Best-effort persistence failures by sink.",
		},
		[]string{"sink"},
	)

	workerMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "messages_total",
			Help:      "Queue messages handled by the extraction worker, by result.",
		},
		[]string{"result"},
	)
)

// ObserveExtraction records one extraction outcome and its latency.
func ObserveExtraction(source, outcome string, elapsed time.Duration) {
	extractionsTotal.WithLabelValues(source, outcome).Inc()
	extractionDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

// SinkFailed counts a failed best-effort write to sink.
func SinkFailed(sink string) {
	sinkFailuresTotal.WithLabelValues(sink).Inc()
}

// WorkerMessage counts a queue message by result (ack, drop, requeue).
func WorkerMessage(result string) {
	workerMessagesTotal.WithLabelValues(result).Inc()
}
