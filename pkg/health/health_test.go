package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dd0wney/cluso-nodeflow/pkg/constraints"
	"github.com/dd0wney/cluso-nodeflow/pkg/graph"
	"github.com/dd0wney/cluso-nodeflow/pkg/tags"
)

func TestNewHealthChecker(t *testing.T) {
	hc := NewHealthChecker()

	if hc == nil {
		t.Fatal("NewHealthChecker returned nil")
	}
	resp := hc.Check()
	if resp.Status != StatusHealthy {
		t.Errorf("empty checker status = %s, want healthy", resp.Status)
	}
	if resp.Uptime <= 0 {
		t.Error("uptime not set")
	}
}

func TestWorstStatusWins(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy beats degraded", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := NewHealthChecker()
			for i, s := range tt.statuses {
				s := s
				hc.RegisterCheck(string(rune('a'+i)), func() Check { return Check{Status: s} })
			}
			resp := hc.Check()
			if resp.Status != tt.want {
				t.Errorf("status = %s, want %s", resp.Status, tt.want)
			}
			if len(resp.Checks) != len(tt.statuses) {
				t.Errorf("got %d checks, want %d", len(resp.Checks), len(tt.statuses))
			}
			if resp.Checks["a"].Name != "a" {
				t.Errorf("check name not defaulted, got %q", resp.Checks["a"].Name)
			}
		})
	}
}

func TestHandlers(t *testing.T) {
	hc := NewHealthChecker()
	hc.RegisterCheck("warn", func() Check { return Check{Status: StatusDegraded} })
	hc.RegisterReadinessCheck("down", func() Check { return Check{Status: StatusDegraded} })

	w := httptest.NewRecorder()
	hc.HTTPHandler()(w, httptest.NewRequest("GET", "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Errorf("degraded health = %d, want 200", w.Code)
	}
	var resp Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != StatusDegraded {
		t.Errorf("status = %s, want degraded", resp.Status)
	}

	w = httptest.NewRecorder()
	hc.ReadinessHandler()(w, httptest.NewRequest("GET", "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("degraded readiness = %d, want 503", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %s", ct)
	}
}

func TestGraphCheck(t *testing.T) {
	r := graph.NewRegistry()
	a := r.NewNode("a", "")
	b := r.NewNode("b", "")
	r.RegisterNode(a)
	r.RegisterNode(b)
	out := r.NewPort(a, "out", graph.Output)
	in := r.NewPort(b, "in", graph.Input)
	r.SetPortTags(out, tags.SetOf(0))
	r.SetPortTags(in, tags.SetOf(0))
	r.RegisterPort(out)
	r.RegisterPort(in)
	r.CreateConnectionBetweenPorts(out, in)

	check := GraphCheck(r, constraints.NewDefaultValidator())
	if c := check(); c.Status != StatusHealthy {
		t.Fatalf("status = %s (%s), want healthy", c.Status, c.Message)
	}

	// A raw connection between unequal tags is only a warning
	f := r.NewPort(a, "f", graph.Output)
	r.SetPortTags(f, tags.SetOf(1))
	r.RegisterPort(f)
	other := r.NewPort(b, "other", graph.Input)
	r.SetPortTags(other, tags.SetOf(0))
	r.RegisterPort(other)
	r.RegisterConnection(f, other, false)

	c := check()
	if c.Status != StatusDegraded {
		t.Fatalf("status = %s, want degraded", c.Status)
	}
	if c.Details["warnings"] != 1 || c.Details["connections"] != 2 {
		t.Errorf("unexpected details %v", c.Details)
	}

	// Second source into the same input breaks sink cardinality
	r.RegisterConnection(f, in, false)
	if c := check(); c.Status != StatusUnhealthy {
		t.Errorf("status = %s, want unhealthy", c.Status)
	}
}

func TestTagCapacityCheck(t *testing.T) {
	tr := tags.NewRegistry(5)
	check := TagCapacityCheck(tr)

	if c := check(); c.Status != StatusHealthy {
		t.Errorf("empty registry status = %s", c.Status)
	}

	for _, name := range []string{"a", "b", "c", "d"} {
		if err := tr.Register(tags.NameKey(name)); err != nil {
			t.Fatalf("Register(%s): %v", name, err)
		}
	}
	if c := check(); c.Status != StatusDegraded {
		t.Errorf("4/5 status = %s, want degraded", c.Status)
	}

	if err := tr.Register(tags.NameKey("e")); err != nil {
		t.Fatalf("Register(e): %v", err)
	}
	c := check()
	if c.Status != StatusUnhealthy {
		t.Errorf("full status = %s, want unhealthy", c.Status)
	}
	if c.Details["count"] != 5 || c.Details["capacity"] != 5 {
		t.Errorf("unexpected details %v", c.Details)
	}
}
