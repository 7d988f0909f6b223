// Package prometheus provides a MetricsRecorder backed by Prometheus
// collectors and an HTTP handler exposing them.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
)

// Ensure Recorder implements the interface.
var _ driven.MetricsRecorder = (*Recorder)(nil)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "kbrag"

// Recorder records request duration and outcome counts.
type Recorder struct {
	gatherer prometheus.Gatherer

	requestDuration *prometheus.HistogramVec
	requestCount    *prometheus.CounterVec
}

// New creates a recorder with its own registry.
func New(namespace string) *Recorder {
	return NewWithRegistry(namespace, prometheus.NewRegistry())
}

// NewWithRegistry creates a recorder registering its collectors on registry.
func NewWithRegistry(namespace string, registry *prometheus.Registry) *Recorder {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	r := &Recorder{gatherer: registry}

	r.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Duration of requests in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation", "status"},
	)

	r.requestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of requests",
		},
		[]string{"operation", "status"},
	)

	registry.MustRegister(r.requestDuration)
	registry.MustRegister(r.requestCount)

	return r
}

// RecordRequest records the duration and outcome of one request.
func (r *Recorder) RecordRequest(operation, status string, duration time.Duration) {
	r.requestDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
	r.requestCount.WithLabelValues(operation, status).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}
