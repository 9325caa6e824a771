package graphql

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/cluso-nodeflow/pkg/logging"
	"github.com/dd0wney/cluso-nodeflow/pkg/metrics"
)

// GraphQLRequest represents a GraphQL HTTP request
type GraphQLRequest struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

// GraphQLResponse represents a GraphQL HTTP response
type GraphQLResponse struct {
	Data   any            `json:"data,omitempty"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

// GraphQLError represents a GraphQL error
type GraphQLError struct {
	Message string `json:"message"`
}

// maxBodyBytes bounds a request body.
const maxBodyBytes = 1 << 20

// GraphQLHandler handles GraphQL HTTP requests
type GraphQLHandler struct {
	schema   graphql.Schema
	maxDepth int
	timeout  time.Duration
	logger   logging.Logger
	metrics  *metrics.Registry
}

// HandlerOption configures a GraphQLHandler.
type HandlerOption func(*GraphQLHandler)

// WithMaxDepth overrides DefaultMaxDepth. Zero disables the depth check.
func WithMaxDepth(depth int) HandlerOption {
	return func(h *GraphQLHandler) {
		h.maxDepth = depth
	}
}

// WithTimeout bounds the execution of a single query.
func WithTimeout(d time.Duration) HandlerOption {
	return func(h *GraphQLHandler) {
		h.timeout = d
	}
}

func WithLogger(l logging.Logger) HandlerOption {
	return func(h *GraphQLHandler) {
		h.logger = l
	}
}

func WithMetrics(m *metrics.Registry) HandlerOption {
	return func(h *GraphQLHandler) {
		h.metrics = m
	}
}

// NewGraphQLHandler creates a new GraphQL HTTP handler
func NewGraphQLHandler(schema graphql.Schema, opts ...HandlerOption) *GraphQLHandler {
	h := &GraphQLHandler{
		schema:   schema,
		maxDepth: DefaultMaxDepth,
		logger:   logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP handles HTTP requests for GraphQL queries
func (h *GraphQLHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := http.StatusOK
	if h.metrics != nil {
		h.metrics.HTTPRequestsInFlight.Inc()
		defer func() {
			h.metrics.HTTPRequestsInFlight.Dec()
			h.metrics.RecordHTTPRequest(r.Method, r.URL.Path, strconv.Itoa(status), time.Since(start))
		}()
	}

	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	if r.Method == http.MethodOptions {
		w.WriteHeader(status)
		return
	}

	if r.Method != http.MethodPost {
		status = http.StatusMethodNotAllowed
		http.Error(w, "Method not allowed", status)
		return
	}

	var req GraphQLRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		status = http.StatusBadRequest
		http.Error(w, "Invalid request body", status)
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	result := ExecuteWithDepthLimit(ctx, h.schema, req, h.maxDepth)

	response := GraphQLResponse{
		Data: result.Data,
	}
	if result.HasErrors() {
		response.Errors = make([]GraphQLError, len(result.Errors))
		for i, err := range result.Errors {
			response.Errors[i] = GraphQLError{
				Message: err.Message,
			}
		}
		h.logger.Debug("graphql query failed",
			logging.Path(r.URL.Path),
			logging.String("error", result.Errors[0].Message))
	}

	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Warn("failed to write graphql response", logging.Error(err))
	}
}
