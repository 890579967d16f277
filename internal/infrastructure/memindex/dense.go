package memindex

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/kmalykh/bank-assistant/internal/core/domain"
)

// DenseIndex is a brute-force cosine similarity index. Vectors are
// L2-normalized at build time so search is a plain dot product. The index is
// immutable after construction.
type DenseIndex struct {
	chunks  []domain.Chunk
	vectors [][]float32
	dim     int
}

func BuildDense(chunks []domain.Chunk, vectors [][]float32) (*DenseIndex, error) {
	if len(chunks) == 0 {
		return nil, domain.WrapError(domain.ErrIndexBuild, "build dense index", errors.New("no chunks"))
	}
	if len(vectors) != len(chunks) {
		return nil, domain.WrapError(domain.ErrIndexBuild, "build dense index",
			fmt.Errorf("%d chunks but %d vectors", len(chunks), len(vectors)))
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, domain.WrapError(domain.ErrIndexBuild, "build dense index", errors.New("zero-dimensional vector"))
	}

	normalized := make([][]float32, len(vectors))
	for i, vec := range vectors {
		if len(vec) != dim {
			return nil, domain.WrapError(domain.ErrIndexBuild, "build dense index",
				fmt.Errorf("vector %d has dimension %d, expected %d", i, len(vec), dim))
		}
		normalized[i] = normalize(vec)
	}

	return &DenseIndex{chunks: chunks, vectors: normalized, dim: dim}, nil
}

func (idx *DenseIndex) Search(ctx context.Context, queryVector []float32, limit int) ([]domain.RetrievedChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if idx == nil || len(idx.chunks) == 0 {
		return nil, domain.WrapError(domain.ErrNotReady, "dense search", errors.New("empty index"))
	}
	if len(queryVector) != idx.dim {
		return nil, fmt.Errorf("dense search: query vector has dimension %d, index dimension %d", len(queryVector), idx.dim)
	}
	if limit <= 0 {
		return nil, nil
	}

	query := normalize(queryVector)
	scored := make([]domain.RetrievedChunk, 0, len(idx.chunks))
	for i, chunk := range idx.chunks {
		scored = append(scored, retrievedFromChunk(chunk, dot(query, idx.vectors[i]), domain.OriginDense))
	}

	// Stable keeps insertion order for equal scores.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func retrievedFromChunk(chunk domain.Chunk, score float64, origin domain.ChunkOrigin) domain.RetrievedChunk {
	return domain.RetrievedChunk{
		ChunkID: chunk.ID,
		Source:  chunk.Source,
		Page:    chunk.Page,
		Type:    chunk.Type,
		Text:    chunk.Text,
		Score:   score,
		Origin:  origin,
	}
}

func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return append([]float32(nil), vec...)
	}
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
