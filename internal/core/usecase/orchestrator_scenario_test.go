package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/kmalykh/bank-assistant/internal/core/domain"
	"github.com/kmalykh/bank-assistant/internal/infrastructure/memindex"
)

// keywordEmbedder produces deterministic topic vectors so pipeline tests can
// run against the real indexes without a model server.
type keywordEmbedder struct{}

func topicVector(text string) []float32 {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "доллар"):
		return []float32{1, 0, 0}
	case strings.Contains(lower, "карт"):
		return []float32{0, 1, 0}
	default:
		return []float32{0, 0, 1}
	}
}

func (keywordEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = topicVector(text)
	}
	return out, nil
}

func (keywordEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return topicVector(text), nil
}

func newPipeline(t *testing.T, params domain.RetrievalParams) (*Orchestrator, *fakeGenerator) {
	t.Helper()
	generator := &fakeGenerator{answer: "Курс доллара США обновляется ежедневно."}
	loader := &fakeLoader{chunks: corpusChunks()}
	orch := NewOrchestrator(params, keywordEmbedder{}, memindex.NewBuilder(), generator, NewReranker(&fakeScorer{}), loader, nil, nil)
	if _, err := orch.Reindex(context.Background()); err != nil {
		t.Fatalf("Reindex() error = %v", err)
	}
	return orch, generator
}

func TestSemanticPipelineFindsCurrencyChunk(t *testing.T) {
	orch, _ := newPipeline(t, semanticParams())

	answer, err := orch.Answer(context.Background(), "какой сегодня курс доллара?", nil)
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if len(answer.Sources) == 0 || answer.Sources[0].ChunkID != "c1" {
		t.Fatalf("expected currency chunk first, got %+v", answer.Sources)
	}
	if answer.Sources[0].Source != "rates.pdf" || answer.Sources[0].Page != 1 {
		t.Fatalf("source attribution lost: %+v", answer.Sources[0])
	}
}

func TestHybridPipelineRanksCurrencyChunkFirst(t *testing.T) {
	orch, _ := newPipeline(t, hybridParams())

	chunks, err := orch.Retrieve(context.Background(), "официальный курс доллара")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(chunks) == 0 || chunks[0].ChunkID != "c1" {
		t.Fatalf("expected currency chunk to win fusion, got %+v", chunks)
	}
	if chunks[0].Origin != domain.OriginFused {
		t.Fatalf("expected fused origin, got %q", chunks[0].Origin)
	}
}

func TestExactMatchPipelineAnswersDepositQuestion(t *testing.T) {
	orch, generator := newPipeline(t, hybridParams())

	answer, err := orch.Answer(context.Background(), "какие проценты по вкладам?", nil)
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer.Text != "7.5% годовых" {
		t.Fatalf("expected canonical deposit answer, got %q", answer.Text)
	}
	if generator.answerCalls != 0 {
		t.Fatalf("exact match must bypass generation, got %d calls", generator.answerCalls)
	}
}
