package constraints

import (
	"fmt"
)

// PortNameUniqueness ensures no owner has two registered ports with the same
// name in the same orientation. Name resolution picks the first match, so a
// duplicate would be unreachable by name.
type PortNameUniqueness struct{}

// Name returns a human-readable name for this constraint
func (c *PortNameUniqueness) Name() string {
	return "UniquePortName"
}

// Validate checks port names owner by owner
func (c *PortNameUniqueness) Validate(g GraphReader) ([]Violation, error) {
	var violations []Violation

	for _, e := range g.Entities() {
		seen := make(map[string]bool)
		for _, p := range g.Ports(e.Handle) {
			key := p.Orientation.String() + "/" + p.Name
			if !seen[key] {
				seen[key] = true
				continue
			}
			violations = append(violations, Violation{
				Type:       UniquenessViolation,
				Severity:   Error,
				Entity:     e.Name,
				Port:       refPtr(p.Ref()),
				Constraint: c.Name(),
				Message: fmt.Sprintf("Duplicate %s port '%s' on '%s'",
					p.Orientation, p.Name, e.Name),
				Details: map[string]any{
					"orientation": p.Orientation.String(),
					"port":        p.Name,
				},
			})
		}
	}

	return violations, nil
}

// DuplicateConnectionConstraint ensures a source and sink are joined by at
// most one connection.
type DuplicateConnectionConstraint struct{}

func (c *DuplicateConnectionConstraint) Name() string {
	return "UniqueConnection"
}

func (c *DuplicateConnectionConstraint) Validate(g GraphReader) ([]Violation, error) {
	var violations []Violation

	// Map of "source->sink" -> id of the first connection seen
	seen := make(map[string]string)

	for _, conn := range g.Connections() {
		key := conn.SourceRef.String() + "->" + conn.SinkRef.String()
		first, dup := seen[key]
		if !dup {
			seen[key] = conn.ID.String()
			continue
		}
		violations = append(violations, Violation{
			Type:       UniquenessViolation,
			Severity:   Error,
			Connection: conn.ID.String(),
			Port:       refPtr(conn.SinkRef),
			Constraint: c.Name(),
			Message:    fmt.Sprintf("Duplicate connection %s (also exists as %s)", key, first),
			Details: map[string]any{
				"connection":   key,
				"duplicate_of": first,
			},
		})
	}

	return violations, nil
}
