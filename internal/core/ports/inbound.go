package ports

import (
	"context"

	"github.com/kmalykh/bank-assistant/internal/core/domain"
)

// RetrievalService is the inbound contract for answering questions over the
// knowledge corpus and managing its index lifecycle.
type RetrievalService interface {
	Answer(ctx context.Context, question string, history []domain.Message) (*domain.Answer, error)
	Retrieve(ctx context.Context, query string) ([]domain.RetrievedChunk, error)
	Reindex(ctx context.Context) (*domain.ReindexResult, error)
	Stats() domain.IndexStats
}

// Tool is a callable capability exposed to agent runtimes.
type Tool interface {
	Name() string
	Description() string
	Invoke(ctx context.Context, args map[string]any) (string, error)
}
