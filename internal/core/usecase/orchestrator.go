package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/kmalykh/bank-assistant/internal/core/domain"
	"github.com/kmalykh/bank-assistant/internal/core/ports"
)

// Orchestrator answers questions over the knowledge corpus and owns the
// index lifecycle. The current corpus generation is held in an atomic
// pointer: queries read it lock-free, reindexing builds a full replacement
// off to the side and swaps it in with a single store. A failed rebuild
// leaves the previous generation serving.
type Orchestrator struct {
	params    domain.RetrievalParams
	embedder  ports.Embedder
	builder   ports.IndexBuilder
	generator ports.AnswerGenerator
	reranker  *Reranker
	loader    ports.CorpusLoader
	events    ports.EventPublisher
	logger    *slog.Logger

	snapshot   atomic.Pointer[Snapshot]
	reindexing atomic.Bool
}

func NewOrchestrator(
	params domain.RetrievalParams,
	embedder ports.Embedder,
	builder ports.IndexBuilder,
	generator ports.AnswerGenerator,
	reranker *Reranker,
	loader ports.CorpusLoader,
	events ports.EventPublisher,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		params:    params,
		embedder:  embedder,
		builder:   builder,
		generator: generator,
		reranker:  reranker,
		loader:    loader,
		events:    events,
		logger:    logger,
	}
}

var errEmptyQuestion = errors.New("empty question")

func (o *Orchestrator) Answer(ctx context.Context, question string, history []domain.Message) (*domain.Answer, error) {
	trimmed := strings.TrimSpace(question)
	if trimmed == "" {
		return nil, domain.WrapError(domain.ErrMalformedQuery, "answer", errEmptyQuestion)
	}

	snap := o.snapshot.Load()
	if snap == nil {
		return nil, domain.WrapError(domain.ErrNotReady, "answer", errNotIndexed)
	}

	// Known questions bypass retrieval and generation entirely.
	if answer, ok := snap.ExactAnswer(trimmed); ok {
		return &domain.Answer{Text: answer, Exact: true}, nil
	}

	query := o.rewriteQuery(ctx, trimmed, history)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	chunks, err := o.retrieveFromSnapshot(ctx, snap, query)
	if err != nil {
		return nil, err
	}

	answerText, err := o.generator.GenerateAnswer(ctx, trimmed, FormatChunks(chunks))
	if err != nil {
		return nil, domain.WrapError(domain.ErrLLMProvider, "generate answer", err)
	}

	return &domain.Answer{Text: answerText, Sources: chunks}, nil
}

// rewriteQuery condenses a follow-up question into a standalone search query
// using the conversation history. Rewrite failures fall back to the original
// question; only cancellation aborts.
func (o *Orchestrator) rewriteQuery(ctx context.Context, question string, history []domain.Message) string {
	if len(history) == 0 {
		return question
	}
	rewritten, err := o.generator.RewriteQuery(ctx, question, history)
	if err != nil {
		if ctx.Err() == nil {
			o.logger.Warn("query rewrite failed, using original question", "error", err)
		}
		return question
	}
	if strings.TrimSpace(rewritten) == "" {
		return question
	}
	return rewritten
}

func (o *Orchestrator) Retrieve(ctx context.Context, query string) ([]domain.RetrievedChunk, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, domain.WrapError(domain.ErrMalformedQuery, "retrieve", errEmptyQuestion)
	}
	snap := o.snapshot.Load()
	if snap == nil {
		return nil, domain.WrapError(domain.ErrNotReady, "retrieve", errNotIndexed)
	}
	return o.retrieveFromSnapshot(ctx, snap, trimmed)
}

var errNotIndexed = errors.New("corpus has not been indexed")

func (o *Orchestrator) retrieveFromSnapshot(ctx context.Context, snap *Snapshot, query string) ([]domain.RetrievedChunk, error) {
	switch o.params.Mode {
	case domain.ModeSemantic:
		return o.denseSearch(ctx, snap, query, o.params.DenseK)
	case domain.ModeHybrid:
		return o.hybridSearch(ctx, snap, query)
	case domain.ModeHybridReranker:
		fused, err := o.hybridSearch(ctx, snap, query)
		if err != nil {
			return nil, err
		}
		reranked, err := o.reranker.Rerank(ctx, query, fused, o.params.RerankTopK)
		if err != nil {
			if !domain.IsKind(err, domain.ErrRerankerUnavailable) {
				return nil, err
			}
			// Serve the fused order rather than failing the request.
			o.logger.Warn("reranker unavailable, serving fused results", "error", err)
			return trimCandidates(fused, o.params.RerankTopK), nil
		}
		return reranked, nil
	default:
		return nil, fmt.Errorf("unknown retrieval mode %q", o.params.Mode)
	}
}

func (o *Orchestrator) denseSearch(ctx context.Context, snap *Snapshot, query string, limit int) ([]domain.RetrievedChunk, error) {
	vector, err := o.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, domain.WrapError(domain.ErrEmbedding, "embed query", err)
	}
	chunks, err := snap.Dense.Search(ctx, vector, limit)
	if err != nil {
		return nil, fmt.Errorf("dense search: %w", err)
	}
	return chunks, nil
}

func (o *Orchestrator) hybridSearch(ctx context.Context, snap *Snapshot, query string) ([]domain.RetrievedChunk, error) {
	if o.params.DenseWeight == 0 && o.params.SparseWeight == 0 {
		return nil, nil
	}

	// A zero-weight leg is skipped entirely: its chunks would all fuse to
	// score zero, so hybrid with one active source must rank exactly like
	// that source alone.
	var dense, sparse []domain.RetrievedChunk
	if o.params.DenseWeight != 0 {
		var err error
		dense, err = o.denseSearch(ctx, snap, query, o.params.DenseK)
		if err != nil {
			return nil, err
		}
	}
	if o.params.SparseWeight != 0 {
		var err error
		sparse, err = snap.Sparse.Search(ctx, query, o.params.SparseK)
		if err != nil {
			return nil, fmt.Errorf("sparse search: %w", err)
		}
	}

	fused := fuseWeighted(dense, sparse, o.params.DenseWeight, o.params.SparseWeight)
	return trimCandidates(fused, o.params.DenseK+o.params.SparseK), nil
}

// Reindex rebuilds the corpus snapshot and swaps it in atomically. Only one
// rebuild runs at a time; a concurrent call is a no-op. On failure the
// previous snapshot keeps serving.
func (o *Orchestrator) Reindex(ctx context.Context) (*domain.ReindexResult, error) {
	if !o.reindexing.CompareAndSwap(false, true) {
		return &domain.ReindexResult{Status: domain.ReindexAlreadyRunning, ChunkCount: o.chunkCount()}, nil
	}
	defer o.reindexing.Store(false)

	chunks, err := o.loader.Load(ctx)
	if err != nil {
		return nil, domain.WrapError(domain.ErrIndexBuild, "load corpus", err)
	}
	if len(chunks) == 0 {
		return nil, domain.WrapError(domain.ErrIndexBuild, "load corpus", errors.New("corpus is empty"))
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	vectors, err := o.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, domain.WrapError(domain.ErrIndexBuild, "embed corpus", err)
	}

	dense, err := o.builder.BuildDense(chunks, vectors)
	if err != nil {
		return nil, fmt.Errorf("build dense index: %w", err)
	}
	sparse, err := o.builder.BuildSparse(chunks)
	if err != nil {
		return nil, fmt.Errorf("build sparse index: %w", err)
	}

	o.snapshot.Store(NewSnapshot(chunks, dense, sparse))
	o.logger.Info("corpus reindexed", "chunks", len(chunks))

	result := &domain.ReindexResult{Status: domain.ReindexOK, ChunkCount: len(chunks)}
	if o.events != nil {
		if err := o.events.PublishReindexed(ctx, *result); err != nil {
			o.logger.Warn("publish reindexed event failed", "error", err)
		}
	}
	return result, nil
}

func (o *Orchestrator) chunkCount() int {
	if snap := o.snapshot.Load(); snap != nil {
		return len(snap.Chunks)
	}
	return 0
}

// Stats reports current index state; calling it has no side effects.
func (o *Orchestrator) Stats() domain.IndexStats {
	stats := domain.IndexStats{
		Status:     domain.IndexNotInitialized,
		Reindexing: o.reindexing.Load(),
		Mode:       o.params.Mode,
		DenseK:     o.params.DenseK,
	}
	if snap := o.snapshot.Load(); snap != nil {
		stats.Status = domain.IndexReady
		stats.ChunkCount = len(snap.Chunks)
	}
	switch o.params.Mode {
	case domain.ModeHybrid:
		stats.SparseK = o.params.SparseK
		stats.DenseWeight = o.params.DenseWeight
		stats.SparseWeight = o.params.SparseWeight
	case domain.ModeHybridReranker:
		stats.SparseK = o.params.SparseK
		stats.DenseWeight = o.params.DenseWeight
		stats.SparseWeight = o.params.SparseWeight
		stats.RerankTopK = o.params.RerankTopK
		stats.RerankModel = o.params.RerankModel
	}
	return stats
}
