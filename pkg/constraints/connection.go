package constraints

import (
	"fmt"

	"github.com/dd0wney/cluso-nodeflow/pkg/graph"
)

// ConnectionIntegrityConstraint checks that every connection joins two live,
// registered ports, runs from an output to a sink, and is listed on both of
// its endpoints.
type ConnectionIntegrityConstraint struct{}

func (c *ConnectionIntegrityConstraint) Name() string {
	return "ConnectionIntegrity"
}

func (c *ConnectionIntegrityConstraint) Validate(g GraphReader) ([]Violation, error) {
	var violations []Violation

	for _, conn := range g.Connections() {
		source, okS := g.Port(conn.Source)
		sink, okT := g.Port(conn.Sink)

		var problem string
		switch {
		case !okS || !source.Registered:
			problem = fmt.Sprintf("source %s is not registered", conn.SourceRef)
		case !okT || !sink.Registered:
			problem = fmt.Sprintf("sink %s is not registered", conn.SinkRef)
		case source.Orientation != graph.Output:
			problem = fmt.Sprintf("source %s is a %s port", conn.SourceRef, source.Orientation)
		case !sink.Orientation.IsSink():
			problem = fmt.Sprintf("sink %s is an %s port", conn.SinkRef, sink.Orientation)
		case !attached(g, conn.Source, conn.Handle) || !attached(g, conn.Sink, conn.Handle):
			problem = "connection is missing from an endpoint"
		}
		if problem == "" {
			continue
		}

		violations = append(violations, Violation{
			Type:       DanglingConnection,
			Severity:   Error,
			Connection: conn.ID.String(),
			Constraint: c.Name(),
			Message:    fmt.Sprintf("Connection %s -> %s: %s", conn.SourceRef, conn.SinkRef, problem),
			Details: map[string]any{
				"source": conn.SourceRef.String(),
				"sink":   conn.SinkRef.String(),
			},
		})
	}

	return violations, nil
}

func attached(g GraphReader, p graph.PortHandle, c graph.ConnectionHandle) bool {
	for _, h := range g.Attached(p) {
		if h == c {
			return true
		}
	}
	return false
}

// ConnectionTypeConstraint checks that the endpoints of every connection
// carry the same non-empty tag set. Connections made through the checked
// builder always do; raw registrations may not.
type ConnectionTypeConstraint struct {
	// Severity of a mismatch; the zero value is Info.
	Severity Severity
}

func (c *ConnectionTypeConstraint) Name() string {
	return "ConnectionType"
}

func (c *ConnectionTypeConstraint) Validate(g GraphReader) ([]Violation, error) {
	var violations []Violation

	for _, conn := range g.Connections() {
		source, okS := g.Port(conn.Source)
		sink, okT := g.Port(conn.Sink)
		if !okS || !okT {
			continue
		}
		if !source.Tags.Empty() && source.Tags.Equal(sink.Tags) {
			continue
		}
		violations = append(violations, Violation{
			Type:       TagMismatch,
			Severity:   c.Severity,
			Connection: conn.ID.String(),
			Port:       refPtr(conn.SinkRef),
			Constraint: c.Name(),
			Message: fmt.Sprintf("Connection %s -> %s joins tags %s and %s",
				conn.SourceRef, conn.SinkRef, source.Tags, sink.Tags),
			Details: map[string]any{
				"source_tags": source.Tags.String(),
				"sink_tags":   sink.Tags.String(),
			},
		})
	}

	return violations, nil
}
