package health

import (
	"github.com/dd0wney/cluso-nodeflow/pkg/constraints"
	"github.com/dd0wney/cluso-nodeflow/pkg/graph"
	"github.com/dd0wney/cluso-nodeflow/pkg/tags"
)

// GraphCheck validates a snapshot of r. Error violations make the graph
// unhealthy, warnings alone degrade it.
func GraphCheck(r *graph.Registry, v *constraints.Validator) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "graph",
			Details: make(map[string]any),
		}

		snap := r.Snapshot()
		check.Details["entities"] = len(snap.Entities())
		check.Details["connections"] = len(snap.Connections())

		result, err := v.Validate(snap)
		if err != nil {
			check.Status = StatusUnhealthy
			check.Message = err.Error()
			return check
		}

		errs := len(result.GetViolationsBySeverity(constraints.Error))
		warnings := len(result.GetViolationsBySeverity(constraints.Warning))
		check.Details["errors"] = errs
		check.Details["warnings"] = warnings

		switch {
		case errs > 0:
			check.Status = StatusUnhealthy
			check.Message = "Graph has constraint violations"
		case warnings > 0:
			check.Status = StatusDegraded
			check.Message = "Graph has warnings"
		default:
			check.Status = StatusHealthy
			check.Message = "Graph consistent"
		}

		return check
	}
}

// TagCapacityCheck degrades once the tag registry is 80% full and fails when
// no index is left.
func TagCapacityCheck(tr *tags.Registry) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "tags",
			Details: make(map[string]any),
		}

		count, capacity := tr.Count(), tr.Capacity()
		check.Details["count"] = count
		check.Details["capacity"] = capacity

		switch {
		case count >= capacity:
			check.Status = StatusUnhealthy
			check.Message = "Tag registry full"
		case count*5 >= capacity*4:
			check.Status = StatusDegraded
			check.Message = "Tag registry nearly full"
		default:
			check.Status = StatusHealthy
			check.Message = "Tag capacity available"
		}

		return check
	}
}
