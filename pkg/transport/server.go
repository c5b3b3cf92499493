package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/rep"

	// Register all transports
	_ "go.nanomsg.org/mangos/v3/transport/all"

	"github.com/dd0wney/cluso-pathfinder/pkg/logging"
	"github.com/dd0wney/cluso-pathfinder/pkg/pathfinder"
	"github.com/dd0wney/cluso-pathfinder/pkg/spatial"
)

// Service is the subset of *pathfinder.Service served over NNG.
type Service interface {
	AddNode(ctx context.Context, id string, x, y float64) error
	AddEdge(ctx context.Context, id1, id2 string) (bool, error)
	FindPath(ctx context.Context, start, goal string) (*pathfinder.PathResponse, error)
	FindGridPath(ctx context.Context, island [][]any, opts pathfinder.GridOptions) (*pathfinder.GridPathResponse, error)
	Nearest(ctx context.Context, x, y float64, k int) ([]spatial.NearestNode, error)
	Stats() spatial.Stats
}

// MessageRecorder receives transport metrics. *metrics.Registry
// implements it.
type MessageRecorder interface {
	RecordMessage(op, status string, in, out int)
}

// ServerOptions configures a Server.
type ServerOptions struct {
	// Workers is the number of concurrent REP contexts.
	Workers int
	// RecvTimeout bounds each receive so workers notice shutdown.
	RecvTimeout time.Duration
	// Compress forces snappy replies; otherwise replies mirror the request.
	Compress bool
	Logger   logging.Logger
	Recorder MessageRecorder
}

// DefaultServerOptions returns four workers polling every second.
func DefaultServerOptions() ServerOptions {
	return ServerOptions{Workers: 4, RecvTimeout: time.Second}
}

// Server answers requests on a REP socket.
type Server struct {
	svc      Service
	opts     ServerOptions
	logger   logging.Logger
	sock     mangos.Socket
	addr     string
	running  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewServer creates a server; call Listen then Serve.
func NewServer(svc Service, opts ServerOptions) *Server {
	def := DefaultServerOptions()
	if opts.Workers <= 0 {
		opts.Workers = def.Workers
	}
	if opts.RecvTimeout <= 0 {
		opts.RecvTimeout = def.RecvTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Server{
		svc:    svc,
		opts:   opts,
		logger: logger.With(logging.Component("nng")),
		stopCh: make(chan struct{}),
	}
}

// Listen opens the REP socket on addr (tcp://, ipc://, inproc:// or ws://).
func (s *Server) Listen(addr string) error {
	if s.sock != nil {
		return fmt.Errorf("transport: already listening on %s", s.addr)
	}
	sock, err := rep.NewSocket()
	if err != nil {
		return fmt.Errorf("failed to create REP socket: %w", err)
	}
	if err := sock.Listen(addr); err != nil {
		sock.Close()
		return fmt.Errorf("failed to bind REP socket: %w", err)
	}
	s.sock = sock
	s.addr = addr
	s.logger.Info("NNG listener bound", logging.String("addr", addr))
	return nil
}

// Addr returns the address passed to Listen.
func (s *Server) Addr() string { return s.addr }

// Listening reports whether workers are serving requests.
func (s *Server) Listening() bool { return s.running.Load() }

// Serve runs the workers until ctx is done or Close is called.
func (s *Server) Serve(ctx context.Context) error {
	if s.sock == nil {
		return errors.New("transport: Serve called before Listen")
	}

	for i := 0; i < s.opts.Workers; i++ {
		mctx, err := s.sock.OpenContext()
		if err != nil {
			s.Close()
			return fmt.Errorf("failed to open REP context: %w", err)
		}
		if err := mctx.SetOption(mangos.OptionRecvDeadline, s.opts.RecvTimeout); err != nil {
			mctx.Close()
			s.Close()
			return fmt.Errorf("failed to set receive deadline: %w", err)
		}
		s.wg.Add(1)
		go s.worker(ctx, mctx)
	}
	s.running.Store(true)

	select {
	case <-ctx.Done():
	case <-s.stopCh:
	}
	s.Close()
	return nil
}

// Close stops the workers and closes the socket. It is safe to call more
// than once.
func (s *Server) Close() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.running.Store(false)
		if s.sock != nil {
			err = s.sock.Close()
		}
		s.wg.Wait()
		s.logger.Info("NNG listener closed", logging.String("addr", s.addr))
	})
	return err
}

// Shutdown adapts Close to a graceful server shutdown hook.
func (s *Server) Shutdown(context.Context) error {
	return s.Close()
}

func (s *Server) stopped() bool {
	select {
	case <-s.stopCh:
		return true
	default:
		return false
	}
}

func (s *Server) worker(ctx context.Context, mctx mangos.Context) {
	defer s.wg.Done()
	defer mctx.Close()

	for {
		frame, err := mctx.Recv()
		if err != nil {
			if errors.Is(err, mangos.ErrRecvTimeout) && !s.stopped() && ctx.Err() == nil {
				continue
			}
			if !errors.Is(err, mangos.ErrClosed) && !errors.Is(err, mangos.ErrRecvTimeout) {
				s.logger.Warn("NNG receive failed", logging.Error(err))
			}
			return
		}

		reply := s.handle(ctx, frame)
		if err := mctx.Send(reply); err != nil {
			if errors.Is(err, mangos.ErrClosed) {
				return
			}
			s.logger.Warn("NNG send failed", logging.Error(err))
		}
	}
}

// handle decodes one frame, dispatches it and encodes the reply.
func (s *Server) handle(ctx context.Context, frame []byte) []byte {
	var req Request
	compressed, err := decodeFrame(frame, &req)

	resp := Response{ID: req.ID}
	if err == nil {
		ctx = logging.WithRequestID(ctx, req.ID)
		var result any
		result, err = s.dispatch(ctx, req)
		if err == nil {
			resp.OK = true
			resp.Result, err = json.Marshal(result)
		}
	}
	status := "ok"
	if err != nil {
		resp = s.errorResponse(ctx, req, err)
		status = resp.Error
	}

	compressed = compressed || s.opts.Compress
	out, encErr := encodeFrame(resp, compressed)
	if encErr != nil {
		s.logger.Error("Failed to encode NNG reply", logging.Error(encErr))
		out, _ = encodeFrame(Response{ID: req.ID, Error: string(pathfinder.KindInternal), Message: "internal error"}, compressed)
		status = string(pathfinder.KindInternal)
	}

	op := req.Op
	if op == "" {
		op = "invalid"
	}
	if s.opts.Recorder != nil {
		s.opts.Recorder.RecordMessage(op, status, len(frame), len(out))
	}
	return out
}

func (s *Server) errorResponse(ctx context.Context, req Request, err error) Response {
	var kind pathfinder.Kind
	switch {
	case errors.Is(err, ErrBadFrame), errors.Is(err, ErrUnknownOp):
		kind = pathfinder.KindInvalidRequest
	default:
		kind = pathfinder.KindOf(err)
	}

	message := err.Error()
	if kind == pathfinder.KindInternal {
		logging.FromContext(ctx, s.logger).Error("NNG request failed",
			logging.Operation(req.Op), logging.Error(err))
		message = "internal error"
	}
	return Response{ID: req.ID, Error: string(kind), Message: message}
}

func (s *Server) dispatch(ctx context.Context, req Request) (any, error) {
	switch req.Op {
	case OpAddNode:
		var p NodeParams
		if err := decodeParams(req.Params, &p); err != nil {
			return nil, err
		}
		if err := s.svc.AddNode(ctx, p.ID, p.X, p.Y); err != nil {
			return nil, err
		}
		return p, nil

	case OpAddEdge:
		var p EdgeParams
		if err := decodeParams(req.Params, &p); err != nil {
			return nil, err
		}
		created, err := s.svc.AddEdge(ctx, p.Node1, p.Node2)
		if err != nil {
			return nil, err
		}
		return EdgeResult{Created: created}, nil

	case OpFindPath:
		var p PathParams
		if err := decodeParams(req.Params, &p); err != nil {
			return nil, err
		}
		return s.svc.FindPath(ctx, p.Start, p.Goal)

	case OpFindGridPath:
		var p GridParams
		if err := decodeParams(req.Params, &p); err != nil {
			return nil, err
		}
		return s.svc.FindGridPath(ctx, p.Island, pathfinder.GridOptions{Diagonal: p.Diagonal})

	case OpNearest:
		var p NearestParams
		if err := decodeParams(req.Params, &p); err != nil {
			return nil, err
		}
		return s.svc.Nearest(ctx, p.X, p.Y, p.K)

	case OpStats:
		return s.svc.Stats(), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOp, req.Op)
	}
}

func decodeParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing params", ErrBadFrame)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: params: %w", ErrBadFrame, err)
	}
	return nil
}
