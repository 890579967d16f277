package corpus

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"github.com/kmalykh/bank-assistant/internal/core/domain"
)

func (l *Loader) loadPDF(path, name string) ([]domain.Chunk, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var chunks []domain.Chunk
	total := reader.NumPage()
	for pageNum := 1; pageNum <= total; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			l.logger.Warn("skipping pdf page", "file", name, "page", pageNum, "error", err)
			continue
		}
		for _, part := range l.splitter.Split(strings.TrimSpace(text)) {
			chunks = append(chunks, domain.Chunk{
				ID:     uuid.NewString(),
				Text:   part,
				Source: name,
				Page:   pageNum,
				Type:   domain.ChunkTypePDFPage,
			})
		}
	}
	return chunks, nil
}
