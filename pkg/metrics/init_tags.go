package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initTagMetrics() {
	r.TagsRegistered = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "nodeflow_tags_registered",
			Help: "Number of live tag registrations",
		},
	)

	r.TagCapacity = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "nodeflow_tags_capacity",
			Help: "Maximum number of simultaneously registered tags",
		},
	)

	r.TagCapacityErrorsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "nodeflow_tags_capacity_errors_total",
			Help: "Tag registrations refused because every slot was taken",
		},
	)
}
