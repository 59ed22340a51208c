// Package metrics exposes Prometheus metrics for training and serving.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Custom registry to avoid the default Go collectors.
var registry = prometheus.NewRegistry()

var (
	instancesTrained = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "percept",
		Subsystem: "trainer",
		Name:      "instances_total",
		Help:      "Total number of training instances applied",
	})

	instancesRejected = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "percept",
		Subsystem: "trainer",
		Name:      "instances_rejected_total",
		Help:      "Total number of training instances rejected by validation",
	})

	weightCells = promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Namespace: "percept",
		Subsystem: "store",
		Name:      "weight_cells",
		Help:      "Number of allocated weight cells",
	})

	scoreLatency = promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: "percept",
		Subsystem: "scorer",
		Name:      "latency_seconds",
		Help:      "Latency of scoring requests",
		Buckets:   prometheus.DefBuckets,
	})

	httpRequests = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "percept",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by endpoint, method and status",
		},
		[]string{"endpoint", "method", "status"},
	)
)

// RecordInstanceTrained increments the trained-instances counter.
func RecordInstanceTrained() {
	instancesTrained.Inc()
}

// RecordInstanceRejected increments the rejected-instances counter.
func RecordInstanceRejected() {
	instancesRejected.Inc()
}

// SetWeightCells sets the allocated weight-cell gauge.
func SetWeightCells(n int) {
	weightCells.Set(float64(n))
}

// ObserveScoreLatency records one scoring request duration in seconds.
func ObserveScoreLatency(seconds float64) {
	scoreLatency.Observe(seconds)
}

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// Registry returns the registry all percept metrics are registered on.
func Registry() *prometheus.Registry {
	return registry
}
