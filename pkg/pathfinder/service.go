// Package pathfinder is the service boundary in front of the spatial store,
// the grid adapter and the A* engine. It validates requests, runs each
// search on an immutable snapshot under a timeout and shapes results for
// the transports.
package pathfinder

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dd0wney/cluso-pathfinder/pkg/astar"
	"github.com/dd0wney/cluso-pathfinder/pkg/grid"
	"github.com/dd0wney/cluso-pathfinder/pkg/logging"
	"github.com/dd0wney/cluso-pathfinder/pkg/metrics"
	"github.com/dd0wney/cluso-pathfinder/pkg/spatial"
	"github.com/dd0wney/cluso-pathfinder/pkg/validation"
)

// Recorder receives service metrics. *metrics.Registry implements it.
type Recorder interface {
	RecordSearch(kind, outcome string, duration time.Duration, expanded, pathLen int)
	RecordMutation(operation, status string)
	SetGraphSize(nodes, edges int)
}

type nopRecorder struct{}

func (nopRecorder) RecordSearch(string, string, time.Duration, int, int) {}
func (nopRecorder) RecordMutation(string, string)                        {}
func (nopRecorder) SetGraphSize(int, int)                                {}

// Service is safe for concurrent use.
type Service struct {
	store    *spatial.Store
	logger   logging.Logger
	recorder Recorder
	search   atomic.Pointer[SearchConfig]
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRecorder sets the metrics sink.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithStore shares an existing store.
func WithStore(store *spatial.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSearchConfig sets the initial search bounds.
func WithSearchConfig(cfg SearchConfig) Option {
	return func(s *Service) { s.SetSearchConfig(cfg) }
}

// New creates a Service over an empty store unless WithStore is given.
func New(opts ...Option) *Service {
	s := &Service{
		store:    spatial.NewStore(),
		logger:   logging.NewNopLogger(),
		recorder: nopRecorder{},
	}
	def := DefaultSearchConfig()
	s.search.Store(&def)

	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logging.Component("pathfinder"))
	s.publishSize()
	return s
}

// SearchConfig returns the bounds applied to new searches.
func (s *Service) SearchConfig() SearchConfig {
	return *s.search.Load()
}

// SetSearchConfig replaces the search bounds. Non-positive timeout and
// grid limits fall back to the defaults. Searches already running keep
// the bounds they started with.
func (s *Service) SetSearchConfig(cfg SearchConfig) {
	def := DefaultSearchConfig()
	cfg.Timeout = validation.DefaultOrDuration(cfg.Timeout, def.Timeout)
	if cfg.MaxGridCells <= 0 {
		cfg.MaxGridCells = def.MaxGridCells
	}
	if cfg.MaxExpansions < 0 {
		cfg.MaxExpansions = 0
	}
	s.search.Store(&cfg)
}

// AddNode registers a node at (x, y).
func (s *Service) AddNode(ctx context.Context, id string, x, y float64) error {
	log := logging.FromContext(ctx, s.logger)

	req := validation.NodeRequest{ID: id, X: &x, Y: &y}
	err := validation.ValidateNodeRequest(&req)
	if err == nil {
		err = s.store.AddNode(id, x, y)
	}
	if err != nil {
		s.recorder.RecordMutation("add_node", string(KindOf(err)))
		log.Warn("Node rejected", logging.NodeID(id), logging.Kind(string(KindOf(err))), logging.Error(err))
		return err
	}

	s.recorder.RecordMutation("add_node", "success")
	s.publishSize()
	log.Debug("Node added", logging.NodeID(id), logging.Float64("x", x), logging.Float64("y", y))
	return nil
}

// AddEdge links two registered nodes. Re-adding an existing edge succeeds
// with created=false and changes nothing.
func (s *Service) AddEdge(ctx context.Context, id1, id2 string) (created bool, err error) {
	log := logging.FromContext(ctx, s.logger)

	req := validation.EdgeRequest{Node1: id1, Node2: id2}
	err = validation.ValidateEdgeRequest(&req)
	if err == nil {
		created, err = s.store.AddEdge(id1, id2)
	}
	if err != nil {
		s.recorder.RecordMutation("add_edge", string(KindOf(err)))
		log.Warn("Edge rejected", logging.Edge(id1, id2), logging.Kind(string(KindOf(err))), logging.Error(err))
		return false, err
	}

	status := "success"
	if !created {
		status = "exists"
	}
	s.recorder.RecordMutation("add_edge", status)
	s.publishSize()
	log.Debug("Edge added", logging.Edge(id1, id2), logging.Bool("created", created))
	return created, nil
}

// FindPath searches the current graph snapshot from start to goal.
// Unknown endpoints fail with an UnknownNode error before any search work;
// an unreachable goal is a result with Found=false.
func (s *Service) FindPath(ctx context.Context, start, goal string) (*PathResponse, error) {
	cfg := s.SearchConfig()
	op := logging.StartTimer(logging.FromContext(ctx, s.logger), "Graph search",
		logging.Start(start), logging.Goal(goal))

	req := validation.PathRequest{Start: start, Goal: goal}
	if err := validation.ValidatePathRequest(&req); err != nil {
		return nil, s.searchFailed(metrics.KindGraph, op, err)
	}

	snap := s.store.Snapshot()
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	res, err := astar.FindPath(ctx, snap, start, goal, astar.WithMaxExpansions(cfg.MaxExpansions))
	if err != nil {
		return nil, s.searchFailed(metrics.KindGraph, op, err)
	}

	s.searchDone(metrics.KindGraph, op, res)
	return newPathResponse(res), nil
}

// FindGridPath parses a Treasure Island grid and searches it from its
// start cell to its goal cell.
func (s *Service) FindGridPath(ctx context.Context, island [][]any, opts GridOptions) (*GridPathResponse, error) {
	req := validation.GridRequest{Island: island}
	err := validation.ValidateGridRequest(&req)
	if err == nil {
		var cells grid.Cells
		if cells, err = grid.Parse(island); err == nil {
			return s.SolveGrid(ctx, cells, opts)
		}
	}
	op := logging.StartTimer(logging.FromContext(ctx, s.logger), "Grid search")
	return nil, s.searchFailed(metrics.KindGrid, op, err)
}

// SolveGrid searches already-parsed cells.
func (s *Service) SolveGrid(ctx context.Context, cells grid.Cells, opts GridOptions) (*GridPathResponse, error) {
	cfg := s.SearchConfig()

	rows, cols := len(cells), 0
	if rows > 0 {
		cols = len(cells[0])
	}
	op := logging.StartTimer(logging.FromContext(ctx, s.logger), "Grid search", logging.GridSize(rows, cols))

	conn := grid.Conn4
	diagonal := cfg.Diagonal
	if opts.Diagonal != nil {
		diagonal = *opts.Diagonal
	}
	if diagonal {
		conn = grid.Conn8
	}

	space, err := grid.FromGrid(cells, grid.WithConnectivity(conn), grid.WithMaxCells(cfg.MaxGridCells))
	if err != nil {
		return nil, s.searchFailed(metrics.KindGrid, op, err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	res, err := astar.FindPath(ctx, space, space.Start().ID(), space.Goal().ID(),
		astar.WithMaxExpansions(cfg.MaxExpansions))
	if err != nil {
		return nil, s.searchFailed(metrics.KindGrid, op, err)
	}

	out, err := newGridPathResponse(res)
	if err != nil {
		return nil, s.searchFailed(metrics.KindGrid, op, err)
	}
	s.searchDone(metrics.KindGrid, op, res)
	return out, nil
}

// Nearest returns up to k registered nodes closest to (x, y). k <= 0 uses
// validation.DefaultNearest.
func (s *Service) Nearest(ctx context.Context, x, y float64, k int) ([]spatial.NearestNode, error) {
	if k <= 0 {
		k = validation.DefaultNearest
	}
	req := validation.NearestRequest{X: &x, Y: &y, K: k}
	if err := validation.ValidateNearestRequest(&req); err != nil {
		return nil, err
	}
	return s.store.Nearest(x, y, k)
}

// Nodes lists every node ordered by id.
func (s *Service) Nodes() []spatial.Node {
	return s.store.Nodes()
}

// Edges lists every undirected edge once, ordered by endpoints.
func (s *Service) Edges() []spatial.Edge {
	return s.store.Edges()
}

// Stats summarises the graph.
func (s *Service) Stats() spatial.Stats {
	return s.store.Stats()
}

// Reset clears the graph.
func (s *Service) Reset(ctx context.Context) {
	before := s.store.Stats()
	s.store.Reset()
	s.recorder.RecordMutation("reset", "success")
	s.publishSize()
	logging.FromContext(ctx, s.logger).Info("Graph reset",
		logging.Int("nodes", before.NodeCount), logging.Int("edges", before.EdgeCount))
}

// Probe reports the size of the snapshot searches would use now. Used by
// readiness checks. The snapshot is cached, so the next search reuses it.
func (s *Service) Probe() (nodes, edges int) {
	snap := s.store.Snapshot()
	return snap.Len(), snap.EdgeCount()
}

func (s *Service) publishSize() {
	st := s.store.Stats()
	s.recorder.SetGraphSize(st.NodeCount, st.EdgeCount)
}

func (s *Service) searchDone(kind string, op *logging.TimedOperation, res *astar.Result) {
	outcome := metrics.OutcomeFound
	if !res.Found {
		outcome = metrics.OutcomeNotFound
	}
	s.recorder.RecordSearch(kind, outcome, op.Elapsed(), res.Expanded, len(res.Path))
	op.EndWithLevel(logging.DebugLevel, "Search finished",
		logging.Found(res.Found), logging.Cost(res.Cost), logging.Expanded(res.Expanded))
}

// searchFailed records a failed search and returns err unchanged.
func (s *Service) searchFailed(kind string, op *logging.TimedOperation, err error) error {
	s.recorder.RecordSearch(kind, metrics.OutcomeError, op.Elapsed(), 0, 0)
	k := KindOf(err)
	if k == KindInternal {
		op.EndError(err, logging.Kind(string(k)))
	} else {
		op.EndWithLevel(logging.WarnLevel, "Search rejected", logging.Kind(string(k)), logging.Error(err))
	}
	return err
}
