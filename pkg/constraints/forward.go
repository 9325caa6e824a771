package constraints

import (
	"fmt"

	"github.com/dd0wney/cluso-nodeflow/pkg/graph"
)

// ForwardTargetConstraint validates group forwarding tables: a forward port
// belongs to its group and has at least one target, targets share its
// orientation and live on other registered entities, and no concrete port is
// claimed by two forward ports of the same group. Group members must be
// registered plain nodes.
type ForwardTargetConstraint struct{}

func (c *ForwardTargetConstraint) Name() string {
	return "ForwardTarget"
}

func (c *ForwardTargetConstraint) Validate(g GraphReader) ([]Violation, error) {
	var violations []Violation
	report := func(group string, port *graph.PortRef, format string, args ...any) {
		violations = append(violations, Violation{
			Type:       ForwardViolation,
			Severity:   Error,
			Entity:     group,
			Port:       port,
			Constraint: c.Name(),
			Message:    fmt.Sprintf(format, args...),
		})
	}

	type claim struct {
		group    graph.EntityHandle
		concrete graph.PortHandle
	}
	claimed := make(map[claim]graph.PortRef)

	for _, entry := range g.Forwards() {
		group, _ := g.Entity(entry.Group)
		fwd, ok := g.Port(entry.Forward)
		if !ok {
			report(group.Name, nil, "Group '%s' forwards from a released port", group.Name)
			continue
		}
		ref := fwd.Ref()
		if fwd.Owner != entry.Group {
			report(group.Name, &ref, "Forward port %s is not owned by group '%s'", ref, group.Name)
		}
		if len(entry.Targets) == 0 {
			report(group.Name, &ref, "Forward port %s has no targets", ref)
		}

		for _, t := range entry.Targets {
			target, ok := g.Port(t)
			if !ok || !target.Registered {
				report(group.Name, &ref, "Forward port %s targets an unregistered port", ref)
				continue
			}
			if target.Orientation != entry.Orientation {
				report(group.Name, &ref, "Forward port %s (%s) targets %s (%s)",
					ref, entry.Orientation, target.Ref(), target.Orientation)
			}
			if target.Owner == entry.Group {
				report(group.Name, &ref, "Forward port %s targets its own group", ref)
			}
			key := claim{entry.Group, t}
			if prev, taken := claimed[key]; taken {
				report(group.Name, &ref, "Port %s is forwarded by both %s and %s", target.Ref(), prev, ref)
				continue
			}
			claimed[key] = ref
		}
	}

	for _, e := range g.Entities() {
		if e.Kind != graph.KindGroup {
			continue
		}
		for _, m := range g.Members(e.Handle) {
			member, ok := g.Entity(m)
			if !ok || member.Kind != graph.KindNode {
				report(e.Name, nil, "Group '%s' has a member that is not a registered node", e.Name)
			}
		}
	}

	return violations, nil
}
