package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/kmalykh/bank-assistant/internal/adapters/http"
	"github.com/kmalykh/bank-assistant/internal/bootstrap"
	"github.com/kmalykh/bank-assistant/internal/config"
	"github.com/kmalykh/bank-assistant/internal/core/domain"
	"github.com/kmalykh/bank-assistant/internal/observability/logging"
	"github.com/kmalykh/bank-assistant/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("api", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	m := metrics.NewHTTPServerMetrics("api")
	router := httpadapter.NewRouter(app.Retrieval, m, domain.RetrievalMode(cfg.RetrievalMode), logger).Handler()
	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Reindex commands arrive over NATS as well as HTTP.
	go func() {
		err := app.Queue.SubscribeReindexCommands(ctx, func(ctx context.Context) error {
			result, err := app.Retrieval.Reindex(ctx)
			if err != nil {
				return err
			}
			logger.Info("reindex command handled", "status", result.Status, "chunks", result.ChunkCount)
			return nil
		})
		if err != nil && ctx.Err() == nil {
			logger.Error("reindex subscription error", "error", err)
		}
	}()

	go func() {
		logger.Info("api listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown error", "error", err)
	}
}
