package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"tienda-dashboard/internal/config"
	"tienda-dashboard/internal/dataset"
	"tienda-dashboard/internal/middleware"
	"tienda-dashboard/internal/observability"
	"tienda-dashboard/internal/server"
	"tienda-dashboard/internal/services"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", version,
		"addr", cfg.Address(),
		"data_source", cfg.Data.Source,
		"locale", cfg.Dashboard.Locale,
		"empty_selection", cfg.Dashboard.EmptySelection,
	)

	// The dashboard cannot serve anything without its dataset, so a failed
	// load ends the process before the listener opens.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Data.FetchTimeout)
	ds, err := dataset.NewLoader(cfg.Data, logger).Load(ctx, cfg.Data.Source)
	cancel()
	if err != nil {
		logger.Error("failed to load dataset", "source", cfg.Data.Source, "error", err)
		os.Exit(1)
	}

	analytics, err := services.NewAnalytics(ds, services.Options{
		PageSize:               cfg.Dashboard.PageSize,
		Locale:                 cfg.Dashboard.Locale,
		EmptySelectionMeansAll: cfg.Dashboard.EmptySelectionMeansAll(),
	}, logger)
	if err != nil {
		logger.Error("failed to build dashboard", "error", err)
		os.Exit(1)
	}

	limiter := middleware.NewRateLimiter(cfg.Security)
	handler, err := newHandler(cfg, analytics, limiter, logger)
	if err != nil {
		logger.Error("failed to build middleware", "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go limiter.Run(sweepCtx, middleware.DefaultSweepInterval, logger)

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg.Server)
	gracefulServer.RegisterShutdownHook(func(context.Context) error {
		stopSweep()
		return nil
	})
	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("dashboard stopped", "records_served", ds.Len(), "uptime", time.Since(ds.LoadedAt()))
		return nil
	})

	if err := gracefulServer.ListenAndServe(context.Background()); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}

func newHandler(cfg *config.Config, analytics *services.Analytics, limiter *middleware.RateLimiter, logger *slog.Logger) (http.Handler, error) {
	srv := server.NewServer(analytics, logger)

	compress, err := middleware.Compress()
	if err != nil {
		return nil, err
	}

	chain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(limiter, logger),
		compress,
	)
	return chain(srv), nil
}
