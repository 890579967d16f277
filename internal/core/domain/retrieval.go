package domain

// ChunkOrigin records which retrieval stage produced a result's score.
type ChunkOrigin string

const (
	OriginDense    ChunkOrigin = "dense"
	OriginSparse   ChunkOrigin = "sparse"
	OriginFused    ChunkOrigin = "fused"
	OriginReranked ChunkOrigin = "reranked"
)

type RetrievedChunk struct {
	ChunkID string      `json:"chunk_id"`
	Source  string      `json:"source"`
	Page    int         `json:"page,omitempty"`
	Type    ChunkType   `json:"type"`
	Text    string      `json:"text"`
	Score   float64     `json:"score"`
	Origin  ChunkOrigin `json:"origin"`
}

type Answer struct {
	Text    string           `json:"text"`
	Sources []RetrievedChunk `json:"sources"`
	Exact   bool             `json:"exact"`
}

// Message is one turn of prior conversation passed along for query rewriting.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type RetrievalMode string

const (
	ModeSemantic       RetrievalMode = "semantic"
	ModeHybrid         RetrievalMode = "hybrid"
	ModeHybridReranker RetrievalMode = "hybrid_reranker"
)

func (m RetrievalMode) Valid() bool {
	switch m {
	case ModeSemantic, ModeHybrid, ModeHybridReranker:
		return true
	}
	return false
}

// RetrievalParams is fixed at startup; per-query overrides are not supported.
type RetrievalParams struct {
	Mode         RetrievalMode
	DenseK       int
	SparseK      int
	DenseWeight  float64
	SparseWeight float64
	RerankTopK   int
	RerankModel  string
}

type ReindexStatus string

const (
	ReindexOK             ReindexStatus = "ok"
	ReindexStarted        ReindexStatus = "started"
	ReindexAlreadyRunning ReindexStatus = "already_running"
)

type ReindexResult struct {
	Status     ReindexStatus `json:"status"`
	ChunkCount int           `json:"chunk_count"`
}

type IndexStatus string

const (
	IndexNotInitialized IndexStatus = "not_initialized"
	IndexReady          IndexStatus = "ready"
)

// IndexStats is a point-in-time snapshot of index state; reading it never
// mutates anything.
type IndexStats struct {
	Status       IndexStatus   `json:"status"`
	ChunkCount   int           `json:"chunk_count"`
	Reindexing   bool          `json:"reindexing"`
	Mode         RetrievalMode `json:"retrieval_mode"`
	DenseK       int           `json:"dense_k"`
	SparseK      int           `json:"sparse_k,omitempty"`
	DenseWeight  float64       `json:"dense_weight,omitempty"`
	SparseWeight float64       `json:"sparse_weight,omitempty"`
	RerankTopK   int           `json:"rerank_top_k,omitempty"`
	RerankModel  string        `json:"rerank_model,omitempty"`
}
