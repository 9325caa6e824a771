package constraints

import (
	"fmt"

	"github.com/dd0wney/cluso-nodeflow/pkg/graph"
)

// CardinalityConstraint validates the number of connections attached to each
// registered port of one orientation.
type CardinalityConstraint struct {
	Orientation graph.Orientation // Ports to apply constraint to
	NodeName    string            // Owner name (empty = every owner)
	Min         int               // Minimum number of connections (0 = optional)
	Max         int               // Maximum number of connections (0 = unlimited)
}

// SinkCardinality is the single-assignment rule: an input or parameter
// accepts at most one connection.
func SinkCardinality() []Constraint {
	return []Constraint{
		&CardinalityConstraint{Orientation: graph.Input, Max: 1},
		&CardinalityConstraint{Orientation: graph.Parameter, Max: 1},
	}
}

// Name returns the constraint name
func (cc *CardinalityConstraint) Name() string {
	owner := cc.NodeName
	if owner == "" {
		owner = "*"
	}
	return fmt.Sprintf("CardinalityConstraint(%s,%s,[%d,%d])",
		owner, cc.Orientation, cc.Min, cc.Max)
}

// Validate checks the cardinality constraint against every matching port
func (cc *CardinalityConstraint) Validate(g GraphReader) ([]Violation, error) {
	violations := make([]Violation, 0)

	for _, e := range g.Entities() {
		if cc.NodeName != "" && e.Name != cc.NodeName {
			continue
		}
		for _, p := range g.Ports(e.Handle) {
			if p.Orientation != cc.Orientation {
				continue
			}
			count := len(g.Attached(p.Handle))

			if cc.Min > 0 && count < cc.Min {
				violations = append(violations, cc.violation(p, count, "minimum", cc.Min))
			}
			if cc.Max > 0 && count > cc.Max {
				violations = append(violations, cc.violation(p, count, "maximum", cc.Max))
			}
		}
	}

	return violations, nil
}

func (cc *CardinalityConstraint) violation(p graph.PortInfo, count int, bound string, limit int) Violation {
	return Violation{
		Type:       CardinalityViolation,
		Severity:   Error,
		Entity:     p.OwnerName,
		Port:       refPtr(p.Ref()),
		Constraint: cc.Name(),
		Message: fmt.Sprintf("Port %s has %d connection(s), %s is %d",
			p.Ref(), count, bound, limit),
		Details: map[string]any{
			"orientation": cc.Orientation.String(),
			"count":       count,
			bound:         limit,
		},
	}
}
