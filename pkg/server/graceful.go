package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dd0wney/cluso-pathfinder/pkg/logging"
)

// ConfigReloadFunc is a function that reloads configuration
type ConfigReloadFunc func() error

// ShutdownHook runs once when shutdown begins, before the HTTP server stops
// accepting connections.
type ShutdownHook func(ctx context.Context) error

// Options tune the wrapped http.Server.
type Options struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	Logger          logging.Logger
}

// DefaultOptions returns the timeouts used when none are configured.
func DefaultOptions() Options {
	return Options{
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		Logger:          logging.NewNopLogger(),
	}
}

// GracefulServer wraps an HTTP server with signal handling, graceful
// shutdown and SIGHUP configuration reload.
type GracefulServer struct {
	server          *http.Server
	logger          logging.Logger
	shutdownTimeout time.Duration

	shutdownCh   chan struct{}
	shutdownOnce sync.Once
	shutdownErr  error
	ready        chan struct{}
	addr         net.Addr

	mu             sync.RWMutex
	configReloadFn ConfigReloadFunc
	hooks          []ShutdownHook
}

// NewGracefulServer creates a new graceful HTTP server
func NewGracefulServer(addr string, handler http.Handler, opts Options) *GracefulServer {
	def := DefaultOptions()
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = def.ReadTimeout
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = def.WriteTimeout
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = def.IdleTimeout
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = def.ShutdownTimeout
	}
	if opts.Logger == nil {
		opts.Logger = def.Logger
	}

	return &GracefulServer{
		server: &http.Server{
			Addr:           addr,
			Handler:        handler,
			ReadTimeout:    opts.ReadTimeout,
			WriteTimeout:   opts.WriteTimeout,
			IdleTimeout:    opts.IdleTimeout,
			MaxHeaderBytes: 1 << 20,
		},
		logger:          opts.Logger.With(logging.Component("http")),
		shutdownTimeout: opts.ShutdownTimeout,
		shutdownCh:      make(chan struct{}),
		ready:           make(chan struct{}),
	}
}

// Run listens on the configured address and serves until ctx is cancelled
// or SIGINT/SIGTERM arrives. A clean shutdown returns nil.
func (gs *GracefulServer) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", gs.server.Addr)
	if err != nil {
		return err
	}
	return gs.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (gs *GracefulServer) Serve(ctx context.Context, ln net.Listener) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() { errCh <- gs.server.Serve(ln) }()

	gs.addr = ln.Addr()
	close(gs.ready)
	gs.logger.Info("HTTP server listening", logging.String("addr", ln.Addr().String()))

	for {
		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				<-gs.shutdownCh
				return nil
			}
			return err

		case <-ctx.Done():
			gs.logger.Info("Context cancelled, starting graceful shutdown")
			return gs.Shutdown()

		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				gs.logger.Info("Received SIGHUP, reloading configuration")
				gs.ReloadConfig()
				continue
			}
			gs.logger.Info("Received signal, starting graceful shutdown", logging.String("signal", sig.String()))
			return gs.Shutdown()
		}
	}
}

// Ready is closed once the server is accepting connections.
func (gs *GracefulServer) Ready() <-chan struct{} {
	return gs.ready
}

// Addr returns the bound listener address. Valid after Ready.
func (gs *GracefulServer) Addr() net.Addr {
	<-gs.ready
	return gs.addr
}

// OnShutdown registers a hook run when shutdown begins. Hooks run in
// registration order.
func (gs *GracefulServer) OnShutdown(hook ShutdownHook) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.hooks = append(gs.hooks, hook)
}

// Shutdown runs the shutdown hooks and drains in-flight requests within
// the configured timeout. Only the first call does any work.
func (gs *GracefulServer) Shutdown() error {
	gs.shutdownOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), gs.shutdownTimeout)
		defer cancel()

		gs.logger.Info("Initiating graceful shutdown", logging.Duration("timeout", gs.shutdownTimeout))

		gs.mu.RLock()
		hooks := append([]ShutdownHook(nil), gs.hooks...)
		gs.mu.RUnlock()

		var errs []error
		for _, hook := range hooks {
			if err := hook(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		if err := gs.server.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}

		gs.shutdownErr = errors.Join(errs...)
		if gs.shutdownErr != nil {
			gs.logger.Error("Error during shutdown", logging.Error(gs.shutdownErr))
		} else {
			gs.logger.Info("Server shutdown complete")
		}
		close(gs.shutdownCh)
	})
	<-gs.shutdownCh
	return gs.shutdownErr
}

// IsShuttingDown returns true once shutdown has completed
func (gs *GracefulServer) IsShuttingDown() bool {
	select {
	case <-gs.shutdownCh:
		return true
	default:
		return false
	}
}

// SetConfigReloadFunc sets the function to call when configuration reload is triggered
func (gs *GracefulServer) SetConfigReloadFunc(fn ConfigReloadFunc) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.configReloadFn = fn
}

// ReloadConfig triggers a configuration reload
func (gs *GracefulServer) ReloadConfig() error {
	gs.mu.RLock()
	reloadFn := gs.configReloadFn
	gs.mu.RUnlock()

	if reloadFn == nil {
		gs.logger.Warn("Configuration reload requested, but no reload function configured")
		return nil
	}

	if err := reloadFn(); err != nil {
		gs.logger.Error("Configuration reload failed", logging.Error(err))
		return err
	}

	gs.logger.Info("Configuration reload complete")
	return nil
}
