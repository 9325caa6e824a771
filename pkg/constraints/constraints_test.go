package constraints

import (
	"testing"

	"github.com/dd0wney/cluso-nodeflow/pkg/graph"
	"github.com/dd0wney/cluso-nodeflow/pkg/tags"
)

var (
	intTags   = tags.SetOf(0)
	floatTags = tags.SetOf(1)
)

func setupTestGraph(t *testing.T) *graph.Registry {
	t.Helper()
	return graph.NewRegistry()
}

func addNode(t *testing.T, r *graph.Registry, name string) graph.EntityHandle {
	t.Helper()
	h := r.NewNode(name, "")
	if _, ok := r.RegisterNode(h); !ok {
		t.Fatalf("failed to register node %s", name)
	}
	return h
}

func addPort(t *testing.T, r *graph.Registry, owner graph.EntityHandle, name string, o graph.Orientation, s tags.Set) graph.PortHandle {
	t.Helper()
	p := r.NewPort(owner, name, o)
	if p.IsZero() {
		t.Fatalf("failed to create port %s", name)
	}
	r.SetPortTags(p, s)
	r.RegisterPort(p)
	return p
}

// faultyReader overrides parts of a snapshot to simulate states the registry
// itself never produces.
type faultyReader struct {
	*graph.Snapshot
	hidePort   graph.PortHandle
	extraPorts map[graph.EntityHandle][]graph.PortInfo
	forwards   []graph.ForwardEntry
}

func (f *faultyReader) Port(p graph.PortHandle) (graph.PortInfo, bool) {
	if p == f.hidePort {
		return graph.PortInfo{}, false
	}
	return f.Snapshot.Port(p)
}

func (f *faultyReader) Ports(owner graph.EntityHandle) []graph.PortInfo {
	return append(f.Snapshot.Ports(owner), f.extraPorts[owner]...)
}

func (f *faultyReader) Forwards() []graph.ForwardEntry {
	if f.forwards != nil {
		return f.forwards
	}
	return f.Snapshot.Forwards()
}

// TestCardinalityConstraint_SinkSingleAssignment tests the max-one rule on inputs
func TestCardinalityConstraint_SinkSingleAssignment(t *testing.T) {
	r := setupTestGraph(t)
	a := addNode(t, r, "a")
	b := addNode(t, r, "b")
	c := addNode(t, r, "c")
	in := addPort(t, r, a, "in", graph.Input, intTags)

	// Raw registration skips the builder's sink check
	r.RegisterConnection(addPort(t, r, b, "out", graph.Output, intTags), in, false)
	r.RegisterConnection(addPort(t, r, c, "out", graph.Output, intTags), in, false)

	constraint := &CardinalityConstraint{Orientation: graph.Input, Max: 1}
	violations, err := constraint.Validate(r.Snapshot())
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if len(violations) != 1 {
		t.Fatalf("Expected 1 violation, got %d", len(violations))
	}
	if violations[0].Port == nil || *violations[0].Port != (graph.PortRef{Owner: "a", Port: "in"}) {
		t.Errorf("Expected violation on a.in, got %v", violations[0].Port)
	}
	if violations[0].Details["count"] != 2 {
		t.Errorf("Expected count 2, got %v", violations[0].Details["count"])
	}
}

// TestCardinalityConstraint_MinConnections tests minimum connection count validation
func TestCardinalityConstraint_MinConnections(t *testing.T) {
	r := setupTestGraph(t)
	a := addNode(t, r, "a")
	b := addNode(t, r, "b")
	addPort(t, r, a, "out", graph.Output, intTags)
	addPort(t, r, b, "out", graph.Output, intTags)

	constraint := &CardinalityConstraint{Orientation: graph.Output, NodeName: "b", Min: 1}
	violations, err := constraint.Validate(r.Snapshot())
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if len(violations) != 1 {
		t.Fatalf("Expected 1 violation, got %d", len(violations))
	}
	if violations[0].Entity != "b" {
		t.Errorf("Expected violation for b, got %s", violations[0].Entity)
	}
	if violations[0].Severity != Error {
		t.Errorf("Expected Error severity")
	}
}

// TestDuplicateConnectionConstraint tests that a source/sink pair is joined once
func TestDuplicateConnectionConstraint(t *testing.T) {
	r := setupTestGraph(t)
	a := addNode(t, r, "a")
	b := addNode(t, r, "b")
	out := addPort(t, r, a, "out", graph.Output, intTags)
	in := addPort(t, r, b, "in", graph.Input, intTags)
	r.RegisterConnection(out, in, false)
	r.RegisterConnection(out, in, false)

	violations, err := (&DuplicateConnectionConstraint{}).Validate(r.Snapshot())
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if len(violations) != 1 {
		t.Fatalf("Expected 1 violation, got %d", len(violations))
	}
	if violations[0].Type != UniquenessViolation {
		t.Errorf("Expected UniquenessViolation, got %v", violations[0].Type)
	}
	if violations[0].Details["connection"] != "a.out->b.in" {
		t.Errorf("Unexpected details: %v", violations[0].Details)
	}
}

// TestConnectionTypeConstraint tests tag equality across connections
func TestConnectionTypeConstraint(t *testing.T) {
	r := setupTestGraph(t)
	a := addNode(t, r, "a")
	b := addNode(t, r, "b")
	r.RegisterConnection(
		addPort(t, r, a, "out", graph.Output, intTags),
		addPort(t, r, b, "in", graph.Input, floatTags),
		false,
	)
	r.CreateConnectionBetweenPorts(
		addPort(t, r, a, "ok", graph.Output, intTags),
		addPort(t, r, b, "ok", graph.Input, intTags),
	)

	violations, err := (&ConnectionTypeConstraint{Severity: Warning}).Validate(r.Snapshot())
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if len(violations) != 1 {
		t.Fatalf("Expected 1 violation, got %d", len(violations))
	}
	if violations[0].Type != TagMismatch || violations[0].Severity != Warning {
		t.Errorf("Expected TagMismatch warning, got %v %v", violations[0].Type, violations[0].Severity)
	}
}

// TestConnectionIntegrityConstraint tests detection of dangling endpoints
func TestConnectionIntegrityConstraint(t *testing.T) {
	r := setupTestGraph(t)
	a := addNode(t, r, "a")
	b := addNode(t, r, "b")
	out := addPort(t, r, a, "out", graph.Output, intTags)
	in := addPort(t, r, b, "in", graph.Input, intTags)
	if _, ok := r.CreateConnectionBetweenPorts(out, in); !ok {
		t.Fatal("connect failed")
	}

	constraint := &ConnectionIntegrityConstraint{}
	violations, err := constraint.Validate(r.Snapshot())
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if len(violations) != 0 {
		t.Fatalf("Expected a consistent registry, got %v", violations)
	}

	violations, err = constraint.Validate(&faultyReader{Snapshot: r.Snapshot(), hidePort: in})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if len(violations) != 1 {
		t.Fatalf("Expected 1 violation, got %d", len(violations))
	}
	if violations[0].Type != DanglingConnection {
		t.Errorf("Expected DanglingConnection, got %v", violations[0].Type)
	}
	if violations[0].Connection == "" {
		t.Error("Expected the connection id to be set")
	}
}

// TestPortNameUniqueness tests duplicate port names per owner and orientation
func TestPortNameUniqueness(t *testing.T) {
	r := setupTestGraph(t)
	a := addNode(t, r, "a")
	in := addPort(t, r, a, "x", graph.Input, intTags)
	addPort(t, r, a, "x", graph.Output, intTags)

	constraint := &PortNameUniqueness{}
	violations, _ := constraint.Validate(r.Snapshot())
	if len(violations) != 0 {
		t.Fatalf("Same name in different orientations is allowed, got %v", violations)
	}

	s := r.Snapshot()
	dup, _ := s.Port(in)
	violations, _ = constraint.Validate(&faultyReader{
		Snapshot:   s,
		extraPorts: map[graph.EntityHandle][]graph.PortInfo{a: {dup}},
	})
	if len(violations) != 1 {
		t.Fatalf("Expected 1 violation, got %d", len(violations))
	}
	if violations[0].Entity != "a" {
		t.Errorf("Expected violation on a, got %s", violations[0].Entity)
	}
}

// TestForwardTargetConstraint tests forwarding table validation
func TestForwardTargetConstraint(t *testing.T) {
	r := setupTestGraph(t)
	a := addNode(t, r, "a")
	addPort(t, r, a, "in", graph.Input, intTags)
	addPort(t, r, a, "out", graph.Output, intTags)
	if _, ok := r.Group(a); !ok {
		t.Fatal("group failed")
	}

	constraint := &ForwardTargetConstraint{}
	s := r.Snapshot()
	violations, _ := constraint.Validate(s)
	if len(violations) != 0 {
		t.Fatalf("Expected no violations, got %v", violations)
	}

	// A second forward port claiming the same concrete input
	forwards := s.Forwards()
	clash := forwards[0]
	outFwd := forwards[1].Forward
	clash.Forward = outFwd
	violations, _ = constraint.Validate(&faultyReader{
		Snapshot: s,
		forwards: append(append([]graph.ForwardEntry(nil), forwards...), clash),
	})
	if len(violations) != 1 {
		t.Fatalf("Expected 1 violation, got %d: %v", len(violations), violations)
	}
	if violations[0].Type != ForwardViolation || violations[0].Entity != "a" {
		t.Errorf("Unexpected violation %+v", violations[0])
	}
}

// TestValidator_Defaults tests the default rule set on clean and broken graphs
func TestValidator_Defaults(t *testing.T) {
	r := setupTestGraph(t)
	a := addNode(t, r, "a")
	b := addNode(t, r, "b")
	out := addPort(t, r, a, "out", graph.Output, intTags)
	in := addPort(t, r, b, "in", graph.Input, intTags)
	r.CreateConnectionBetweenPorts(out, in)

	validator := NewDefaultValidator()
	if len(validator.GetConstraints()) != len(DefaultConstraints()) {
		t.Fatalf("Expected %d constraints", len(DefaultConstraints()))
	}

	result, err := validator.Validate(r.Snapshot())
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !result.Valid {
		t.Fatalf("Expected a valid graph, got %v", result.Violations)
	}
	if result.CheckedAt.IsZero() {
		t.Error("Expected CheckedAt to be set")
	}

	r.RegisterConnection(out, in, false)
	r.RegisterConnection(addPort(t, r, a, "f", graph.Output, floatTags), in, false)

	result, err = validator.Validate(r.Snapshot())
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if result.Valid {
		t.Fatal("Expected validation to fail")
	}
	if n := len(result.GetViolationsByType(UniquenessViolation)); n != 1 {
		t.Errorf("Expected 1 duplicate, got %d", n)
	}
	if n := len(result.GetViolationsByType(CardinalityViolation)); n != 1 {
		t.Errorf("Expected 1 cardinality violation, got %d", n)
	}
	if n := len(result.GetViolationsBySeverity(Warning)); n != 1 {
		t.Errorf("Expected 1 warning, got %d", n)
	}

	validator.ClearConstraints()
	if len(validator.GetConstraints()) != 0 {
		t.Error("Expected no constraints after clear")
	}
}

func TestSeverityAndTypeStrings(t *testing.T) {
	if Warning.String() != "Warning" || Severity(9).String() != "Unknown" {
		t.Error("unexpected severity strings")
	}
	if ForwardViolation.String() != "ForwardViolation" || ViolationType(99).String() != "Unknown" {
		t.Error("unexpected violation type strings")
	}
}
