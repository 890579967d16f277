package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/kmalykh/bank-assistant/internal/core/domain"
	"github.com/kmalykh/bank-assistant/internal/core/ports"
)

var errScoreCountMismatch = errors.New("score count does not match candidate count")

// Reranker orders fused candidates with a cross-encoder. The underlying
// model is loaded lazily on first use; a failed load leaves the reranker
// unloaded so a later request can retry.
type Reranker struct {
	scorer ports.PairScorer

	mu     sync.Mutex
	loaded bool
}

func NewReranker(scorer ports.PairScorer) *Reranker {
	return &Reranker{scorer: scorer}
}

func (r *Reranker) ensureLoaded(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded {
		return nil
	}
	if err := r.scorer.Warmup(ctx); err != nil {
		return domain.WrapError(domain.ErrRerankerUnavailable, "load cross-encoder", err)
	}
	r.loaded = true
	return nil
}

// Rerank scores every candidate against the query and returns at most topK
// of them, ordered by cross-encoder score descending. Ties keep the incoming
// order. The result is always a subset of the input.
func (r *Reranker) Rerank(ctx context.Context, query string, candidates []domain.RetrievedChunk, topK int) ([]domain.RetrievedChunk, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	if err := r.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	passages := make([]string, len(candidates))
	for i, c := range candidates {
		passages[i] = c.Text
	}

	scores, err := r.scorer.ScorePairs(ctx, query, passages)
	if err != nil {
		return nil, domain.WrapError(domain.ErrRerankerUnavailable, "score pairs", err)
	}
	if len(scores) != len(candidates) {
		return nil, domain.WrapError(domain.ErrRerankerUnavailable, "score pairs", errScoreCountMismatch)
	}

	out := make([]domain.RetrievedChunk, len(candidates))
	for i, c := range candidates {
		c.Score = scores[i]
		c.Origin = domain.OriginReranked
		out[i] = c
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	return trimCandidates(out, topK), nil
}
