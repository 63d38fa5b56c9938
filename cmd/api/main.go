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

	httpadapter "github.com/opryamko/hr-assistant/internal/adapters/http"
	"github.com/opryamko/hr-assistant/internal/bootstrap"
	"github.com/opryamko/hr-assistant/internal/config"
	"github.com/opryamko/hr-assistant/internal/observability/logging"
	"github.com/opryamko/hr-assistant/internal/observability/metrics"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := logging.NewJSONLogger("api", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	// Index build runs off the serving path. Until it finishes (or if it
	// fails) the API answers from fallbacks.
	go func() {
		if ok := app.Engine.Initialize(ctx, false); !ok {
			logger.Error("index initialization failed, serving fallback answers only")
		}
	}()

	apiMetrics := metrics.NewAPIMetrics("api")
	router := httpadapter.NewRouter(app.AskUC, app.Engine, app.Queue, apiMetrics).Handler()
	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api listening", slog.String("port", cfg.APIPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown error", slog.Any("error", err))
	}
}
