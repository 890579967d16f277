package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kmalykh/bank-assistant/internal/core/domain"
	"github.com/kmalykh/bank-assistant/internal/infrastructure/chunking"
)

// Loader reads the knowledge corpus from a flat data directory: PDF files
// become page chunks, JSON files become Q&A pair chunks. A file that fails
// to parse is logged and skipped so one bad document cannot block a reindex.
type Loader struct {
	dataDir  string
	splitter *chunking.Splitter
	logger   *slog.Logger
}

func NewLoader(dataDir string, splitter *chunking.Splitter, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{dataDir: dataDir, splitter: splitter, logger: logger}
}

func (l *Loader) Load(ctx context.Context) ([]domain.Chunk, error) {
	entries, err := os.ReadDir(l.dataDir)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}

	var chunks []domain.Chunk
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() {
			continue
		}

		path := filepath.Join(l.dataDir, entry.Name())
		var (
			loaded  []domain.Chunk
			loadErr error
		)
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".pdf":
			loaded, loadErr = l.loadPDF(path, entry.Name())
		case ".json":
			loaded, loadErr = l.loadQAJSON(path, entry.Name())
		default:
			continue
		}
		if loadErr != nil {
			l.logger.Warn("skipping corpus file", "file", entry.Name(), "error", loadErr)
			continue
		}
		chunks = append(chunks, loaded...)
	}

	l.logger.Info("corpus loaded", "dir", l.dataDir, "chunks", len(chunks))
	return chunks, nil
}
