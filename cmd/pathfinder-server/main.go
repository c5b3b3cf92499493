package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dd0wney/cluso-pathfinder/pkg/api"
	"github.com/dd0wney/cluso-pathfinder/pkg/api/middleware"
	"github.com/dd0wney/cluso-pathfinder/pkg/config"
	"github.com/dd0wney/cluso-pathfinder/pkg/health"
	"github.com/dd0wney/cluso-pathfinder/pkg/logging"
	"github.com/dd0wney/cluso-pathfinder/pkg/metrics"
	"github.com/dd0wney/cluso-pathfinder/pkg/pathfinder"
	"github.com/dd0wney/cluso-pathfinder/pkg/server"
	"github.com/dd0wney/cluso-pathfinder/pkg/transport"
)

var version = "dev"

// memoryLimitBytes is where the memory health check starts reporting
// degraded.
const memoryLimitBytes = 2 << 30

func main() {
	configPath := flag.String("config", os.Getenv("PATHFINDER_CONFIG"), "YAML config file (optional)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "pathfinder-server: %v\n", err)
		os.Exit(1)
	}
}

func searchConfig(cfg *config.Config) pathfinder.SearchConfig {
	return pathfinder.SearchConfig{
		Timeout:       cfg.Search.Timeout,
		MaxExpansions: cfg.Search.MaxExpansions,
		MaxGridCells:  cfg.Search.MaxGridCells,
		Diagonal:      cfg.Search.Diagonal,
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := logging.NewStderrLogger(cfg.LogLevel())
	logger.Info("Cluso Pathfinder starting",
		logging.String("version", version),
		logging.String("config", configPath),
	)

	reg := metrics.NewRegistry()
	svc := pathfinder.New(
		pathfinder.WithLogger(logger),
		pathfinder.WithRecorder(reg),
		pathfinder.WithSearchConfig(searchConfig(cfg)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var nng *transport.Server
	if cfg.NNG.Enabled {
		nng = transport.NewServer(svc, transport.ServerOptions{
			RecvTimeout: cfg.NNG.RecvTimeout,
			Compress:    cfg.NNG.Compress,
			Logger:      logger,
			Recorder:    reg,
		})
		if err := nng.Listen(cfg.NNG.Listen); err != nil {
			return err
		}
		go func() {
			if err := nng.Serve(ctx); err != nil {
				logger.Error("NNG server stopped", logging.Error(err))
			}
		}()
	}

	checker := health.NewHealthChecker()
	checker.RegisterReadinessCheck("store", health.StoreCheck(svc.Probe))
	checker.RegisterReadinessCheck("nng", health.TransportCheck(cfg.NNG.Enabled, func() bool {
		return nng != nil && nng.Listening()
	}))
	checker.RegisterCheck("memory", health.MemoryCheck(memoryLimitBytes))
	checker.RegisterLivenessCheck("process", health.SimpleCheck("process"))

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORS.AllowedOrigins
	cors.AllowCredentials = cfg.CORS.AllowCredentials

	apiServer, err := api.NewServer(api.Options{
		Service:      svc,
		Logger:       logger,
		Metrics:      reg,
		Health:       checker,
		CORS:         cors,
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
		Version:      version,
	})
	if err != nil {
		return err
	}

	gs := server.NewGracefulServer(cfg.Addr(), apiServer.Handler(), server.Options{
		ReadTimeout:     cfg.HTTP.ReadTimeout,
		WriteTimeout:    cfg.HTTP.WriteTimeout,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
		Logger:          logger,
	})
	gs.OnShutdown(func(context.Context) error {
		checker.SetDraining(true)
		return nil
	})
	if nng != nil {
		gs.OnShutdown(nng.Shutdown)
	}
	gs.SetConfigReloadFunc(func() error {
		next, err := config.Load(configPath)
		if err != nil {
			return err
		}
		logger.SetLevel(next.LogLevel())
		svc.SetSearchConfig(searchConfig(next))
		logger.Info("Configuration reloaded",
			logging.String("log_level", next.LogLevel().String()),
			logging.Duration("search_timeout", next.Search.Timeout),
			logging.Int("max_expansions", next.Search.MaxExpansions),
		)
		return nil
	})

	logger.Info("HTTP server starting", logging.String("addr", cfg.Addr()),
		logging.Bool("nng", cfg.NNG.Enabled))
	if err := gs.Run(ctx); err != nil {
		return err
	}
	logger.Info("Server exited")
	return nil
}
