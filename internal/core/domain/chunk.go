package domain

type ChunkType string

const (
	ChunkTypePDFPage ChunkType = "pdf_page"
	ChunkTypeQAPair  ChunkType = "qa_pair"
)

// Chunk is one indexed unit of the knowledge corpus. Chunks are immutable
// once created; a reindex replaces the whole set.
type Chunk struct {
	ID     string    `json:"id"`
	Text   string    `json:"text"`
	Source string    `json:"source"`
	Page   int       `json:"page,omitempty"`
	Type   ChunkType `json:"type"`

	// Question and Answer are set only for qa_pair chunks.
	Question string `json:"question,omitempty"`
	Answer   string `json:"answer,omitempty"`
}
