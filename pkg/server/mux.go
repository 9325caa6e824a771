package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dd0wney/cluso-nodeflow/pkg/health"
	"github.com/dd0wney/cluso-nodeflow/pkg/metrics"
)

// Endpoints lists what the inspection server exposes. Nil members are not
// mounted.
type Endpoints struct {
	GraphQL http.Handler
	Metrics *metrics.Registry
	Health  *health.HealthChecker
}

// NewMux routes /graphql, /metrics, /healthz and /readyz.
func NewMux(e Endpoints) *http.ServeMux {
	mux := http.NewServeMux()
	if e.GraphQL != nil {
		mux.Handle("/graphql", e.GraphQL)
	}
	if e.Metrics != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(e.Metrics.GetPrometheusRegistry(), promhttp.HandlerOpts{}))
	}
	if e.Health != nil {
		mux.HandleFunc("/healthz", e.Health.HTTPHandler())
		mux.HandleFunc("/readyz", e.Health.ReadinessHandler())
	}
	return mux
}
