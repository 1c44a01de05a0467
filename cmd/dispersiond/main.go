package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/hazmat-dispersion/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/hazmat-dispersion/internal/adapter/kafka"
	"github.com/couchcryptid/hazmat-dispersion/internal/chemical"
	"github.com/couchcryptid/hazmat-dispersion/internal/config"
	"github.com/couchcryptid/hazmat-dispersion/internal/dispersion"
	"github.com/couchcryptid/hazmat-dispersion/internal/observability"
	"github.com/couchcryptid/hazmat-dispersion/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	table := chemical.Default()
	engine := dispersion.New(table, logger,
		dispersion.WithResultCache(cfg.CalcCacheSize),
		dispersion.WithWorkers(cfg.MultiSourceWorkers),
		dispersion.WithObserver(metrics),
	)
	logger.Info("dispersion engine ready",
		"chemicals", len(table.Names()),
		"cache_size", cfg.CalcCacheSize,
		"workers", cfg.MultiSourceWorkers,
		"sensor_budget", cfg.SensorBudget,
	)

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	assessor := pipeline.NewAssessor(engine, cfg.SensorBudget, logger)

	p := pipeline.New(reader, assessor, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, engine, table, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start assessment pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
