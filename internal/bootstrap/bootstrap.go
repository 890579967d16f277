package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kmalykh/bank-assistant/internal/config"
	"github.com/kmalykh/bank-assistant/internal/core/ports"
	"github.com/kmalykh/bank-assistant/internal/core/usecase"
	"github.com/kmalykh/bank-assistant/internal/infrastructure/chunking"
	"github.com/kmalykh/bank-assistant/internal/infrastructure/corpus"
	"github.com/kmalykh/bank-assistant/internal/infrastructure/llm/ollama"
	"github.com/kmalykh/bank-assistant/internal/infrastructure/memindex"
	"github.com/kmalykh/bank-assistant/internal/infrastructure/queue/nats"
	"github.com/kmalykh/bank-assistant/internal/infrastructure/rerank/crossenc"
	"github.com/kmalykh/bank-assistant/internal/infrastructure/resilience"
)

type App struct {
	Config config.Config

	Retrieval ports.RetrievalService
	Queue     *nats.Queue

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSReindexSubject, cfg.NATSEventSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, executor)
	embedder := ollama.NewEmbedder(ollamaClient)
	generator := ollama.NewGenerator(ollamaClient)

	scorer := crossenc.New(cfg.CrossEncoderURL, cfg.CrossEncoderModel, executor)
	reranker := usecase.NewReranker(scorer)

	splitter := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	loader := corpus.NewLoader(cfg.DataDir, splitter, logger)

	orchestrator := usecase.NewOrchestrator(
		cfg.RetrievalParams(),
		embedder,
		memindex.NewBuilder(),
		generator,
		reranker,
		loader,
		queue,
		logger,
	)

	if cfg.ReindexOnStart {
		if _, err := orchestrator.Reindex(ctx); err != nil {
			// Startup proceeds unindexed; queries return a retriable
			// not-ready error until a reindex succeeds.
			logger.Error("initial reindex failed", "error", err)
		}
	}

	return &App{
		Config:    cfg,
		Retrieval: orchestrator,
		Queue:     queue,

		closeFn: func() {
			queue.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
