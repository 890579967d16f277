package ports

import (
	"context"

	"github.com/kmalykh/bank-assistant/internal/core/domain"
)

// Embedder builds vectors for chunk texts and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// DenseIndex performs vector similarity search over an indexed chunk set.
type DenseIndex interface {
	Search(ctx context.Context, queryVector []float32, limit int) ([]domain.RetrievedChunk, error)
}

// SparseIndex performs lexical (BM25) search over an indexed chunk set.
type SparseIndex interface {
	Search(ctx context.Context, queryText string, limit int) ([]domain.RetrievedChunk, error)
}

// IndexBuilder constructs fresh immutable indexes from a chunk set.
type IndexBuilder interface {
	BuildDense(chunks []domain.Chunk, vectors [][]float32) (DenseIndex, error)
	BuildSparse(chunks []domain.Chunk) (SparseIndex, error)
}

// PairScorer scores query/passage pairs with a cross-encoder model.
type PairScorer interface {
	Warmup(ctx context.Context) error
	ScorePairs(ctx context.Context, query string, passages []string) ([]float64, error)
}

// AnswerGenerator creates the final user-facing answer and rewrites
// follow-up questions into standalone queries.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question string, contextBlock string) (string, error)
	RewriteQuery(ctx context.Context, question string, history []domain.Message) (string, error)
}

// CorpusLoader reads the source corpus into chunks.
type CorpusLoader interface {
	Load(ctx context.Context) ([]domain.Chunk, error)
}

// EventPublisher emits index lifecycle events.
type EventPublisher interface {
	PublishReindexed(ctx context.Context, result domain.ReindexResult) error
}
