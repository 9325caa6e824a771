package metrics

import (
	"runtime"
	"time"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordGraphOperation counts a registry mutation. Status is "success" or
// "rejected".
func (r *Registry) RecordGraphOperation(operation, status string) {
	r.GraphOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordRejection counts a mutation that was turned into a no-op.
func (r *Registry) RecordRejection(reason string) {
	r.GraphRejectionsTotal.WithLabelValues(reason).Inc()
}

// UpdateGraphSize sets the entity gauges in one call.
func (r *Registry) UpdateGraphSize(nodes, groups, ports, connections int) {
	r.GraphNodesTotal.Set(float64(nodes))
	r.GraphGroupsTotal.Set(float64(groups))
	r.GraphPortsTotal.Set(float64(ports))
	r.GraphConnectionsTotal.Set(float64(connections))
}

// UpdateTagCount sets the live tag gauge
func (r *Registry) UpdateTagCount(count, capacity int) {
	r.TagsRegistered.Set(float64(count))
	r.TagCapacity.Set(float64(capacity))
}

// RecordTagCapacityError counts a refused tag registration
func (r *Registry) RecordTagCapacityError() {
	r.TagCapacityErrorsTotal.Inc()
}

// UpdateSystemMetrics refreshes process gauges relative to start.
func (r *Registry) UpdateSystemMetrics(start time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	r.UptimeSeconds.Set(time.Since(start).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(m.Alloc))
}
