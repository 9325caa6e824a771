package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initGraphMetrics() {
	r.GraphNodesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "nodeflow_graph_nodes_total",
			Help: "Number of plain nodes registered in the graph",
		},
	)

	r.GraphGroupsTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "nodeflow_graph_groups_total",
			Help: "Number of groups registered in the graph",
		},
	)

	r.GraphPortsTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "nodeflow_graph_ports_total",
			Help: "Number of ports registered on nodes and groups",
		},
	)

	r.GraphConnectionsTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "nodeflow_graph_connections_total",
			Help: "Number of live connections",
		},
	)

	r.GraphOperationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodeflow_graph_operations_total",
			Help: "Total number of graph registry mutations",
		},
		[]string{"operation", "status"},
	)

	r.GraphRejectionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodeflow_graph_rejections_total",
			Help: "Mutations rejected as no-ops, by reason",
		},
		[]string{"reason"},
	)
}
