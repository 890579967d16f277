package usecase

import (
	"strings"

	"github.com/kmalykh/bank-assistant/internal/core/domain"
	"github.com/kmalykh/bank-assistant/internal/core/ports"
)

// Snapshot is one immutable generation of the knowledge corpus: the chunk
// set, both indexes and the exact-match table, all built from the same chunk
// sequence. A snapshot is never mutated after publication; reindexing builds
// a new one and swaps the pointer.
type Snapshot struct {
	Chunks []domain.Chunk
	Dense  ports.DenseIndex
	Sparse ports.SparseIndex

	exact map[string]string
}

func NewSnapshot(chunks []domain.Chunk, dense ports.DenseIndex, sparse ports.SparseIndex) *Snapshot {
	exact := make(map[string]string)
	for _, chunk := range chunks {
		if chunk.Type != domain.ChunkTypeQAPair || chunk.Question == "" {
			continue
		}
		exact[normalizeQuestion(chunk.Question)] = chunk.Answer
	}
	return &Snapshot{
		Chunks: chunks,
		Dense:  dense,
		Sparse: sparse,
		exact:  exact,
	}
}

// ExactAnswer returns the canonical answer for a question that matches a
// known Q&A pair after normalization.
func (s *Snapshot) ExactAnswer(question string) (string, bool) {
	answer, ok := s.exact[normalizeQuestion(question)]
	return answer, ok
}

func normalizeQuestion(question string) string {
	return strings.ToLower(strings.TrimSpace(question))
}
