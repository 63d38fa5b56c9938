package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/opryamko/hr-assistant/internal/bootstrap"
	"github.com/opryamko/hr-assistant/internal/config"
	"github.com/opryamko/hr-assistant/internal/observability/logging"
	"github.com/opryamko/hr-assistant/internal/observability/metrics"
)

const buildTimeout = 10 * time.Minute

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := logging.NewJSONLogger("worker", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		logger.Info("worker metrics listening", slog.String("port", cfg.WorkerMetricsPort))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("worker metrics server error", slog.Any("error", err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	runBuild := func(buildCtx context.Context, force bool) {
		workerMetrics.StartBuild()
		start := time.Now()
		ok := app.Engine.Initialize(buildCtx, force)
		workerMetrics.FinishBuild("worker", time.Since(start), ok)
		if ok {
			workerMetrics.SetIndexedChunks("worker", cfg.QdrantCollection, app.Engine.IndexedChunks())
		}
	}

	// Initial build so a fresh deployment gets an index without waiting
	// for a reindex request.
	initCtx, cancel := context.WithTimeout(ctx, buildTimeout)
	runBuild(initCtx, false)
	cancel()

	logger.Info("worker subscribed", slog.String("subject", cfg.NATSSubject))
	err = app.Queue.SubscribeReindexRequested(ctx, func(handlerCtx context.Context, reason string, requestedAt time.Time) error {
		logger.Info("reindex requested", slog.String("reason", reason))
		if !requestedAt.IsZero() {
			workerMetrics.ObserveQueueLag("worker", time.Since(requestedAt))
		}
		buildCtx, cancel := context.WithTimeout(handlerCtx, buildTimeout)
		defer cancel()
		runBuild(buildCtx, true)
		return nil
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
