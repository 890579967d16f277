package memindex

import (
	"context"
	"testing"

	"github.com/kmalykh/bank-assistant/internal/core/domain"
)

func testChunks(n int) []domain.Chunk {
	out := make([]domain.Chunk, n)
	for i := range out {
		out[i] = domain.Chunk{ID: string(rune('a' + i)), Text: "text", Source: "doc.pdf", Type: domain.ChunkTypePDFPage}
	}
	return out
}

func TestDenseSearchOrdersByCosine(t *testing.T) {
	chunks := testChunks(3)
	vectors := [][]float32{
		{1, 0},
		{0, 1},
		{0.7, 0.7},
	}
	idx, err := BuildDense(chunks, vectors)
	if err != nil {
		t.Fatalf("BuildDense() error = %v", err)
	}

	got, err := idx.Search(context.Background(), []float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got[0].ChunkID != "a" || got[1].ChunkID != "c" || got[2].ChunkID != "b" {
		t.Fatalf("unexpected order: %s, %s, %s", got[0].ChunkID, got[1].ChunkID, got[2].ChunkID)
	}
	if got[0].Origin != domain.OriginDense {
		t.Fatalf("expected dense origin, got %q", got[0].Origin)
	}
}

func TestDenseSearchTiesKeepInsertionOrder(t *testing.T) {
	chunks := testChunks(3)
	vectors := [][]float32{
		{1, 0},
		{1, 0},
		{1, 0},
	}
	idx, err := BuildDense(chunks, vectors)
	if err != nil {
		t.Fatalf("BuildDense() error = %v", err)
	}

	got, err := idx.Search(context.Background(), []float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got[0].ChunkID != "a" || got[1].ChunkID != "b" || got[2].ChunkID != "c" {
		t.Fatalf("equal scores must keep insertion order, got %s, %s, %s", got[0].ChunkID, got[1].ChunkID, got[2].ChunkID)
	}
}

func TestDenseSearchHonorsLimit(t *testing.T) {
	idx, err := BuildDense(testChunks(5), [][]float32{{1, 0}, {0.9, 0.1}, {0.8, 0.2}, {0, 1}, {0.5, 0.5}})
	if err != nil {
		t.Fatalf("BuildDense() error = %v", err)
	}
	got, err := idx.Search(context.Background(), []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
}

func TestBuildDenseRejectsDimensionMismatch(t *testing.T) {
	_, err := BuildDense(testChunks(2), [][]float32{{1, 0}, {1, 0, 0}})
	if !domain.IsKind(err, domain.ErrIndexBuild) {
		t.Fatalf("expected index build error, got %v", err)
	}
}

func TestBuildDenseRejectsCountMismatch(t *testing.T) {
	_, err := BuildDense(testChunks(2), [][]float32{{1, 0}})
	if !domain.IsKind(err, domain.ErrIndexBuild) {
		t.Fatalf("expected index build error, got %v", err)
	}
}

func TestBuildDenseRejectsEmptyChunks(t *testing.T) {
	_, err := BuildDense(nil, nil)
	if !domain.IsKind(err, domain.ErrIndexBuild) {
		t.Fatalf("expected index build error, got %v", err)
	}
}

func TestDenseSearchEmptyIndexNotReady(t *testing.T) {
	var idx *DenseIndex
	_, err := idx.Search(context.Background(), []float32{1, 0}, 3)
	if !domain.IsKind(err, domain.ErrNotReady) {
		t.Fatalf("expected not ready, got %v", err)
	}
}
