package memindex

import (
	"github.com/kmalykh/bank-assistant/internal/core/domain"
	"github.com/kmalykh/bank-assistant/internal/core/ports"
)

// Builder constructs fresh immutable in-memory indexes.
type Builder struct{}

func NewBuilder() Builder { return Builder{} }

func (Builder) BuildDense(chunks []domain.Chunk, vectors [][]float32) (ports.DenseIndex, error) {
	return BuildDense(chunks, vectors)
}

func (Builder) BuildSparse(chunks []domain.Chunk) (ports.SparseIndex, error) {
	return BuildSparse(chunks)
}
