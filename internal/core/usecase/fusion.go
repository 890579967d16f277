package usecase

import (
	"sort"

	"github.com/kmalykh/bank-assistant/internal/core/domain"
)

type fusedCandidate struct {
	chunk      domain.RetrievedChunk
	combined   float64
	denseRank  int
	sparseRank int
}

const absentRank = 1 << 30

// fuseWeighted merges dense and sparse result lists with a weighted sum of
// their native scores. A chunk missing from one list contributes zero from
// that source; scores are deliberately not normalized across sources.
// Ordering: combined score descending, ties broken by presence in both
// lists, then dense rank, then sparse rank.
func fuseWeighted(dense, sparse []domain.RetrievedChunk, denseWeight, sparseWeight float64) []domain.RetrievedChunk {
	if denseWeight == 0 && sparseWeight == 0 {
		return nil
	}

	acc := make(map[string]*fusedCandidate, len(dense)+len(sparse))
	order := make([]string, 0, len(dense)+len(sparse))

	for rank, chunk := range dense {
		c := &fusedCandidate{chunk: chunk, denseRank: rank, sparseRank: absentRank}
		c.combined = denseWeight * chunk.Score
		acc[chunk.ChunkID] = c
		order = append(order, chunk.ChunkID)
	}
	for rank, chunk := range sparse {
		if c, ok := acc[chunk.ChunkID]; ok {
			c.sparseRank = rank
			c.combined += sparseWeight * chunk.Score
			continue
		}
		acc[chunk.ChunkID] = &fusedCandidate{
			chunk:      chunk,
			combined:   sparseWeight * chunk.Score,
			denseRank:  absentRank,
			sparseRank: rank,
		}
		order = append(order, chunk.ChunkID)
	}

	out := make([]domain.RetrievedChunk, 0, len(acc))
	ranks := make(map[string]*fusedCandidate, len(acc))
	for _, id := range order {
		c := acc[id]
		chunk := c.chunk
		chunk.Score = c.combined
		chunk.Origin = domain.OriginFused
		out = append(out, chunk)
		ranks[id] = c
	}

	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := ranks[out[i].ChunkID], ranks[out[j].ChunkID]
		if ci.combined != cj.combined {
			return ci.combined > cj.combined
		}
		iBoth := ci.denseRank != absentRank && ci.sparseRank != absentRank
		jBoth := cj.denseRank != absentRank && cj.sparseRank != absentRank
		if iBoth != jBoth {
			return iBoth
		}
		if ci.denseRank != cj.denseRank {
			return ci.denseRank < cj.denseRank
		}
		return ci.sparseRank < cj.sparseRank
	})

	return out
}

func trimCandidates(chunks []domain.RetrievedChunk, limit int) []domain.RetrievedChunk {
	if limit <= 0 || len(chunks) <= limit {
		return chunks
	}
	return chunks[:limit]
}
