package graphql

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/cluso-pathfinder/pkg/logging"
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
	Message    string         `json:"message"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// GraphQLHandler handles GraphQL HTTP requests
type GraphQLHandler struct {
	schema   graphql.Schema
	maxDepth int
	logger   logging.Logger
}

// NewGraphQLHandler creates a new GraphQL HTTP handler. maxDepth <= 0 uses
// DefaultMaxDepth.
func NewGraphQLHandler(schema graphql.Schema, maxDepth int, logger logging.Logger) *GraphQLHandler {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &GraphQLHandler{
		schema:   schema,
		maxDepth: maxDepth,
		logger:   logger.With(logging.Component("graphql")),
	}
}

// ServeHTTP executes POSTed queries. GraphQL errors are reported in the
// response body with status 200; only transport problems use HTTP errors.
func (h *GraphQLHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, GraphQLResponse{
			Errors: []GraphQLError{{Message: "method not allowed"}},
		})
		return
	}

	var req GraphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, GraphQLResponse{
			Errors: []GraphQLError{{Message: "invalid request body"}},
		})
		return
	}

	if err := ValidateQueryDepth(req.Query, h.maxDepth); err != nil {
		writeJSON(w, http.StatusOK, GraphQLResponse{
			Errors: []GraphQLError{{Message: err.Error()}},
		})
		return
	}

	result := ExecuteQueryWithVariables(r.Context(), h.schema, req.Query, req.Variables, req.OperationName)

	response := GraphQLResponse{Data: result.Data}
	if result.HasErrors() {
		response.Errors = make([]GraphQLError, len(result.Errors))
		for i, err := range result.Errors {
			response.Errors[i] = GraphQLError{
				Message:    err.Message,
				Extensions: err.Extensions,
			}
		}
		logging.FromContext(r.Context(), h.logger).Debug("GraphQL errors",
			logging.Count(len(result.Errors)), logging.String("first", result.Errors[0].Message))
	}

	writeJSON(w, http.StatusOK, response)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
