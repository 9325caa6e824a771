package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// HTTP Metrics (GraphQL inspection endpoint)
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Graph registry metrics
	GraphNodesTotal       prometheus.Gauge
	GraphGroupsTotal      prometheus.Gauge
	GraphPortsTotal       prometheus.Gauge
	GraphConnectionsTotal prometheus.Gauge
	GraphOperationsTotal  *prometheus.CounterVec
	GraphRejectionsTotal  *prometheus.CounterVec

	// Tag registry metrics
	TagsRegistered         prometheus.Gauge
	TagCapacity            prometheus.Gauge
	TagCapacityErrorsTotal prometheus.Counter

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge

	registry *prometheus.Registry
	mu       sync.RWMutex
}

// NewRegistry creates a registry with every metric initialised.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initHTTPMetrics()
	r.initGraphMetrics()
	r.initTagMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
