// Package api serves the path service over HTTP.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dd0wney/cluso-pathfinder/pkg/api/middleware"
	gql "github.com/dd0wney/cluso-pathfinder/pkg/graphql"
	"github.com/dd0wney/cluso-pathfinder/pkg/health"
	"github.com/dd0wney/cluso-pathfinder/pkg/logging"
	"github.com/dd0wney/cluso-pathfinder/pkg/metrics"
	"github.com/dd0wney/cluso-pathfinder/pkg/pathfinder"
)

// DefaultMaxBodyBytes bounds request bodies when Options leaves it unset.
const DefaultMaxBodyBytes = 10 << 20

// Options configures a Server. Service is required.
type Options struct {
	Service         *pathfinder.Service
	Logger          logging.Logger
	Metrics         *metrics.Registry
	Health          *health.HealthChecker
	CORS            *middleware.CORSConfig
	MaxBodyBytes    int64
	GraphQLMaxDepth int
	Version         string
}

// Server represents the HTTP API server
type Server struct {
	svc            *pathfinder.Service
	logger         logging.Logger
	metrics        *metrics.Registry
	health         *health.HealthChecker
	graphqlHandler *gql.GraphQLHandler
	cors           *middleware.CORSConfig
	maxBodyBytes   int64
	version        string
	startTime      time.Time
}

// NewServer creates a new API server
func NewServer(opts Options) (*Server, error) {
	if opts.Service == nil {
		return nil, fmt.Errorf("api: service is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	schema, err := gql.NewSchema(opts.Service)
	if err != nil {
		return nil, fmt.Errorf("api: %w", err)
	}

	s := &Server{
		svc:            opts.Service,
		logger:         logger.With(logging.Component("api")),
		metrics:        opts.Metrics,
		health:         opts.Health,
		graphqlHandler: gql.NewGraphQLHandler(schema, opts.GraphQLMaxDepth, logger),
		cors:           opts.CORS,
		maxBodyBytes:   opts.MaxBodyBytes,
		version:        opts.Version,
		startTime:      time.Now(),
	}
	if s.health == nil {
		s.health = health.NewHealthChecker()
	}
	if s.cors == nil {
		s.cors = middleware.DefaultCORSConfig()
	}
	if s.maxBodyBytes <= 0 {
		s.maxBodyBytes = DefaultMaxBodyBytes
	}
	if s.version == "" {
		s.version = "dev"
	}
	return s, nil
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Graph registration
	mux.HandleFunc("POST /nodes/{$}", s.createNode)
	mux.HandleFunc("POST /nodes", s.createNode)
	mux.HandleFunc("GET /nodes", s.listNodes)
	mux.HandleFunc("POST /edges/{$}", s.createEdge)
	mux.HandleFunc("POST /edges", s.createEdge)
	mux.HandleFunc("GET /edges", s.listEdges)
	mux.HandleFunc("GET /graph", s.getGraph)
	mux.HandleFunc("DELETE /graph", s.resetGraph)
	mux.HandleFunc("GET /stats", s.getStats)

	// Search
	mux.HandleFunc("GET /path/{start}/{goal}", s.findPath)
	mux.HandleFunc("POST /find-path", s.findGridPath)
	mux.HandleFunc("GET /nearest", s.nearest)

	mux.Handle("/graphql", s.graphqlHandler)

	// Health and metrics
	mux.HandleFunc("GET /health", s.health.HTTPHandler())
	mux.HandleFunc("GET /health/live", s.health.LivenessHandler())
	mux.HandleFunc("GET /health/ready", s.health.ReadinessHandler())
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	mux.HandleFunc("GET /{$}", s.index)

	return mux
}

// Handler returns the routed API wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	var recorder middleware.MetricsRecorder
	if s.metrics != nil {
		recorder = s.metrics
	}
	return middleware.Chain(s.routes(),
		middleware.PanicRecovery(s.logger),
		middleware.RequestID(),
		middleware.Logging(s.logger),
		middleware.Metrics(recorder),
		middleware.SecurityHeaders(),
		middleware.CORS(s.cors),
		middleware.BodySizeLimit(s.maxBodyBytes),
	)
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, IndexResponse{
		Service: "cluso-pathfinder",
		Version: s.version,
		Uptime:  time.Since(s.startTime).Round(time.Second).String(),
		Routes: []string{
			"POST /nodes/?node_id={id}",
			"GET /nodes",
			"POST /edges/",
			"GET /edges",
			"GET /graph",
			"DELETE /graph",
			"GET /stats",
			"GET /path/{start}/{goal}",
			"POST /find-path",
			"GET /nearest?x=&y=&k=",
			"POST /graphql",
			"GET /health",
			"GET /metrics",
		},
	})
}
