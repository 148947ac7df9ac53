package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/skyward-data/remote-sensing-etl/internal/adapter/fs"
	httpadapter "github.com/skyward-data/remote-sensing-etl/internal/adapter/http"
	kafkaadapter "github.com/skyward-data/remote-sensing-etl/internal/adapter/kafka"
	"github.com/skyward-data/remote-sensing-etl/internal/config"
	"github.com/skyward-data/remote-sensing-etl/internal/formats"
	"github.com/skyward-data/remote-sensing-etl/internal/observability"
	"github.com/skyward-data/remote-sensing-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	scanner := fs.NewScanner(cfg.InputDir, cfg.InputGlob, cfg.ProcessedDir, logger)
	transformer, err := pipeline.NewTransformer(cfg.InputFormat, formats.WindcubeOptions{
		DefaultColumns:   cfg.DefaultColumns,
		DefaultAltitudes: cfg.DefaultAltitudes,
	}, logger, metrics)
	if err != nil {
		logger.Error("failed to build transformer", "error", err)
		os.Exit(1)
	}
	writer := kafkaadapter.NewWriter(cfg, logger)

	p := pipeline.New(scanner, transformer, writer, logger, metrics, cfg.BatchSize, cfg.ScanInterval)

	srv := httpadapter.NewServer(cfg.HTTPAddr, cfg.InputFormat, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ingestion pipeline.
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
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
