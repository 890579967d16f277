package memindex

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/kmalykh/bank-assistant/internal/core/domain"
)

const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// SparseIndex is an Okapi BM25 index over tokenized chunk text. Immutable
// after construction.
type SparseIndex struct {
	chunks    []domain.Chunk
	termFreqs []map[string]int
	docLens   []int
	avgDocLen float64
	docFreq   map[string]int
}

func BuildSparse(chunks []domain.Chunk) (*SparseIndex, error) {
	if len(chunks) == 0 {
		return nil, domain.WrapError(domain.ErrIndexBuild, "build sparse index", errors.New("no chunks"))
	}

	termFreqs := make([]map[string]int, len(chunks))
	docLens := make([]int, len(chunks))
	docFreq := make(map[string]int)
	var totalLen int

	for i, chunk := range chunks {
		tokens := tokenize(chunk.Text)
		tf := make(map[string]int, len(tokens))
		for _, token := range tokens {
			tf[token]++
		}
		termFreqs[i] = tf
		docLens[i] = len(tokens)
		totalLen += len(tokens)
		for term := range tf {
			docFreq[term]++
		}
	}

	avg := float64(totalLen) / float64(len(chunks))
	if avg == 0 {
		avg = 1
	}

	return &SparseIndex{
		chunks:    chunks,
		termFreqs: termFreqs,
		docLens:   docLens,
		avgDocLen: avg,
		docFreq:   docFreq,
	}, nil
}

func (idx *SparseIndex) Search(ctx context.Context, queryText string, limit int) ([]domain.RetrievedChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if idx == nil || len(idx.chunks) == 0 {
		return nil, domain.WrapError(domain.ErrNotReady, "sparse search", errors.New("empty index"))
	}
	if limit <= 0 {
		return nil, nil
	}

	queryTerms := tokenize(queryText)
	if len(queryTerms) == 0 {
		return nil, nil
	}

	totalDocs := float64(len(idx.chunks))
	scored := make([]domain.RetrievedChunk, 0, limit)
	for i, chunk := range idx.chunks {
		score := idx.scoreDoc(i, queryTerms, totalDocs)
		if score <= 0 {
			continue
		}
		scored = append(scored, retrievedFromChunk(chunk, score, domain.OriginSparse))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func (idx *SparseIndex) scoreDoc(doc int, queryTerms []string, totalDocs float64) float64 {
	var score float64
	lenNorm := 1 - bm25B + bm25B*float64(idx.docLens[doc])/idx.avgDocLen
	for _, term := range queryTerms {
		tf := idx.termFreqs[doc][term]
		if tf == 0 {
			continue
		}
		df := float64(idx.docFreq[term])
		idf := math.Log(1 + (totalDocs-df+0.5)/(df+0.5))
		score += idf * float64(tf) * (bm25K1 + 1) / (float64(tf) + bm25K1*lenNorm)
	}
	return score
}
