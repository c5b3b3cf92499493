// Package middleware provides the HTTP middleware of the pathfinder API.
//
// The package is organized into separate files by concern:
//
//   - recovery.go: panic recovery
//   - request_id.go: request id generation and propagation
//   - logging.go: structured request logging
//   - metrics.go: Prometheus request metrics
//   - cors.go: Cross-Origin Resource Sharing
//   - security_headers.go: response hardening headers
//   - body_limit.go: request body size limit
//
// All middleware follows the standard pattern: func(http.Handler) http.Handler
// and is combined with Chain:
//
//	handler := middleware.Chain(mux,
//		middleware.PanicRecovery(logger),
//		middleware.RequestID(),
//		middleware.Logging(logger),
//		middleware.Metrics(registry),
//		middleware.CORS(corsConfig),
//		middleware.BodySizeLimit(10<<20),
//	)
package middleware

import (
	"encoding/json"
	"net/http"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain applies mws so that the first one is outermost.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// errorBody mirrors the API error envelope.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
