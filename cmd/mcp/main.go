package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	mcpadapter "github.com/kmalykh/bank-assistant/internal/adapters/mcp"
	"github.com/kmalykh/bank-assistant/internal/bootstrap"
	"github.com/kmalykh/bank-assistant/internal/config"
	"github.com/kmalykh/bank-assistant/internal/core/usecase"
	"github.com/kmalykh/bank-assistant/internal/observability/logging"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()
	// Stdout carries the MCP protocol; logs go to stderr.
	logger := logging.NewJSONLoggerTo(os.Stderr, "mcp", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	tool := usecase.NewKnowledgeSearchTool(app.Retrieval, logger)
	server := mcpadapter.New(version, tool)

	if err := server.ServeStdio(); err != nil {
		logger.Error("mcp server stopped", "error", err)
	}
}
