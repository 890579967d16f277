package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/kmalykh/bank-assistant/internal/core/domain"
)

type qaEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	FullText string `json:"full_text,omitempty"`
}

// loadQAJSON reads a JSON array of question/answer pairs. Each pair becomes
// a single qa_pair chunk; the indexed text covers both sides so lexical and
// dense search can match either.
func (l *Loader) loadQAJSON(path, name string) ([]domain.Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read qa json: %w", err)
	}

	var entries []qaEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse qa json: %w", err)
	}

	chunks := make([]domain.Chunk, 0, len(entries))
	for i, entry := range entries {
		question := strings.TrimSpace(entry.Question)
		answer := strings.TrimSpace(entry.Answer)
		if question == "" || answer == "" {
			l.logger.Warn("skipping qa entry without question or answer", "file", name, "entry", i)
			continue
		}
		text := strings.TrimSpace(entry.FullText)
		if text == "" {
			text = question + "\n" + answer
		}
		chunks = append(chunks, domain.Chunk{
			ID:       uuid.NewString(),
			Text:     text,
			Source:   name,
			Type:     domain.ChunkTypeQAPair,
			Question: question,
			Answer:   answer,
		})
	}
	return chunks, nil
}
