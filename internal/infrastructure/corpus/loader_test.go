package corpus

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kmalykh/bank-assistant/internal/core/domain"
	"github.com/kmalykh/bank-assistant/internal/infrastructure/chunking"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func newTestLoader(dir string) *Loader {
	return NewLoader(dir, chunking.NewSplitter(1500, 150), nil)
}

func TestLoadQAJSONBuildsQAPairChunks(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "faq.json", `[
		{"question": "Какие проценты по вкладам?", "answer": "7.5% годовых"},
		{"question": "Как заказать карту?", "answer": "В приложении банка."}
	]`)

	chunks, err := newTestLoader(dir).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	first := chunks[0]
	if first.Type != domain.ChunkTypeQAPair {
		t.Fatalf("expected qa_pair type, got %q", first.Type)
	}
	if first.Question != "Какие проценты по вкладам?" || first.Answer != "7.5% годовых" {
		t.Fatalf("question/answer lost: %+v", first)
	}
	if first.Source != "faq.json" || first.ID == "" {
		t.Fatalf("missing source or id: %+v", first)
	}
	if first.Text == "" {
		t.Fatalf("qa chunk must carry indexable text")
	}
}

func TestLoadSkipsEntriesWithoutAnswer(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "faq.json", `[
		{"question": "Полный вопрос?", "answer": "Полный ответ."},
		{"question": "Вопрос без ответа?", "answer": ""}
	]`)

	chunks, err := newTestLoader(dir).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected incomplete entry skipped, got %d chunks", len(chunks))
	}
}

func TestLoadSkipsMalformedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.json", `{not json`)
	writeFile(t, dir, "broken.pdf", "this is not a pdf")
	writeFile(t, dir, "notes.txt", "ignored extension")
	writeFile(t, dir, "faq.json", `[{"question": "В?", "answer": "О."}]`)

	chunks, err := newTestLoader(dir).Load(context.Background())
	if err != nil {
		t.Fatalf("one bad file must not fail the load, got %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected only the valid file loaded, got %d chunks", len(chunks))
	}
}

func TestLoadMissingDirFails(t *testing.T) {
	loader := newTestLoader(filepath.Join(t.TempDir(), "missing"))
	if _, err := loader.Load(context.Background()); err == nil {
		t.Fatalf("expected error for missing data dir")
	}
}
