package graphql

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/dd0wney/cluso-nodeflow/pkg/metrics"
)

func post(t *testing.T, h http.Handler, req GraphQLRequest) (*httptest.ResponseRecorder, GraphQLResponse) {
	t.Helper()
	body, _ := json.Marshal(req)
	httpReq := httptest.NewRequest("POST", "/graphql", bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httpReq)

	var resp GraphQLResponse
	if w.Code == http.StatusOK {
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
	}
	return w, resp
}

// TestGraphQLHTTPHandler tests the HTTP handler for GraphQL queries
func TestGraphQLHTTPHandler(t *testing.T) {
	g := setupTestGraph(t)
	handler := NewGraphQLHandler(g.schema)

	w, resp := post(t, handler, GraphQLRequest{
		Query: `query Amp($name: String!) { node(name: $name) { name kind } }`,
		Variables: map[string]any{
			"name": "amp",
		},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %s", ct)
	}
	if len(resp.Errors) > 0 {
		t.Fatalf("Response has errors: %v", resp.Errors)
	}

	data := resp.Data.(map[string]any)
	node := data["node"].(map[string]any)
	if node["name"] != "amp" || node["kind"] != "node" {
		t.Errorf("unexpected node %v", node)
	}
}

func TestGraphQLHTTPHandler_Errors(t *testing.T) {
	g := setupTestGraph(t)
	handler := NewGraphQLHandler(g.schema, WithMaxDepth(2))

	_, resp := post(t, handler, GraphQLRequest{Query: `{ nodes { ports { name } } }`})
	if len(resp.Errors) == 0 || !strings.Contains(resp.Errors[0].Message, "depth") {
		t.Errorf("expected a depth error, got %+v", resp.Errors)
	}

	_, resp = post(t, handler, GraphQLRequest{Query: `{ nosuchfield }`})
	if len(resp.Errors) == 0 {
		t.Error("expected a validation error")
	}
}

func TestGraphQLHTTPHandler_MethodsAndBody(t *testing.T) {
	g := setupTestGraph(t)
	handler := NewGraphQLHandler(g.schema)

	tests := []struct {
		name   string
		method string
		body   string
		want   int
	}{
		{"preflight", "OPTIONS", "", http.StatusOK},
		{"get", "GET", "", http.StatusMethodNotAllowed},
		{"bad json", "POST", "{not json", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/graphql", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestGraphQLHTTPHandler_RecordsMetrics(t *testing.T) {
	g := setupTestGraph(t)
	m := metrics.NewRegistry()
	handler := NewGraphQLHandler(g.schema, WithMetrics(m), WithTimeout(time.Second))

	post(t, handler, GraphQLRequest{Query: `{ health }`})
	req := httptest.NewRequest("GET", "/graphql", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	read := func(method, status string) float64 {
		var metric dto.Metric
		if err := m.HTTPRequestsTotal.WithLabelValues(method, "/graphql", status).Write(&metric); err != nil {
			t.Fatalf("read metric: %v", err)
		}
		return metric.GetCounter().GetValue()
	}
	if got := read("POST", "200"); got != 1 {
		t.Errorf("POST 200 count = %v, want 1", got)
	}
	if got := read("GET", "405"); got != 1 {
		t.Errorf("GET 405 count = %v, want 1", got)
	}

	var inFlight dto.Metric
	if err := m.HTTPRequestsInFlight.Write(&inFlight); err != nil {
		t.Fatalf("read metric: %v", err)
	}
	if inFlight.GetGauge().GetValue() != 0 {
		t.Errorf("in-flight = %v, want 0", inFlight.GetGauge().GetValue())
	}
}
