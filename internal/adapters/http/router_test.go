package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kmalykh/bank-assistant/internal/core/domain"
)

type stubService struct {
	mu           sync.Mutex
	answer       *domain.Answer
	answerErr    error
	stats        domain.IndexStats
	reindexCalls int
}

func (s *stubService) Answer(context.Context, string, []domain.Message) (*domain.Answer, error) {
	return s.answer, s.answerErr
}

func (s *stubService) Retrieve(context.Context, string) ([]domain.RetrievedChunk, error) {
	return nil, nil
}

func (s *stubService) Reindex(context.Context) (*domain.ReindexResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reindexCalls++
	return &domain.ReindexResult{Status: domain.ReindexOK, ChunkCount: 3}, nil
}

func (s *stubService) Stats() domain.IndexStats {
	return s.stats
}

func newTestServer(svc *stubService) *httptest.Server {
	router := NewRouter(svc, nil, domain.ModeHybrid, nil)
	return httptest.NewServer(router.Handler())
}

func TestQueryReturnsAnswer(t *testing.T) {
	svc := &stubService{answer: &domain.Answer{
		Text:    "Курс обновляется ежедневно.",
		Sources: []domain.RetrievedChunk{{Source: "rates.pdf", Page: 1, Text: "..."}},
	}}
	server := newTestServer(svc)
	defer server.Close()

	resp, err := http.Post(server.URL+"/v1/rag/query", "application/json",
		strings.NewReader(`{"question": "какой курс доллара?"}`))
	if err != nil {
		t.Fatalf("POST /v1/rag/query error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var answer domain.Answer
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if answer.Text != "Курс обновляется ежедневно." || len(answer.Sources) != 1 {
		t.Fatalf("unexpected answer: %+v", answer)
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestQueryMapsMalformedQueryTo400(t *testing.T) {
	svc := &stubService{answerErr: domain.WrapError(domain.ErrMalformedQuery, "answer", errors.New("empty question"))}
	server := newTestServer(svc)
	defer server.Close()

	resp, err := http.Post(server.URL+"/v1/rag/query", "application/json", strings.NewReader(`{"question": ""}`))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestQueryMapsNotReadyTo503WithFriendlyMessage(t *testing.T) {
	svc := &stubService{answerErr: domain.WrapError(domain.ErrNotReady, "answer", errors.New("no snapshot"))}
	server := newTestServer(svc)
	defer server.Close()

	resp, err := http.Post(server.URL+"/v1/rag/query", "application/json", strings.NewReader(`{"question": "вопрос"}`))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if strings.Contains(body["error"], "snapshot") {
		t.Fatalf("internal details leaked to client: %q", body["error"])
	}
	if body["error"] == "" {
		t.Fatalf("expected user-facing message")
	}
}

func TestReindexRespondsAcceptedAndRunsInBackground(t *testing.T) {
	svc := &stubService{}
	server := newTestServer(svc)
	defer server.Close()

	resp, err := http.Post(server.URL+"/v1/rag/reindex", "application/json", nil)
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}

	var result domain.ReindexResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Status != domain.ReindexStarted {
		t.Fatalf("expected started status, got %q", result.Status)
	}

	deadline := time.After(time.Second)
	for {
		svc.mu.Lock()
		calls := svc.reindexCalls
		svc.mu.Unlock()
		if calls == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("background reindex never ran")
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func TestReindexReportsAlreadyRunning(t *testing.T) {
	svc := &stubService{stats: domain.IndexStats{Reindexing: true}}
	server := newTestServer(svc)
	defer server.Close()

	resp, err := http.Post(server.URL+"/v1/rag/reindex", "application/json", nil)
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}

	var result domain.ReindexResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Status != domain.ReindexAlreadyRunning {
		t.Fatalf("expected already_running, got %q", result.Status)
	}
	if svc.reindexCalls != 0 {
		t.Fatalf("running rebuild must not be restarted")
	}
}

func TestStatsEndpoint(t *testing.T) {
	svc := &stubService{stats: domain.IndexStats{
		Status:     domain.IndexReady,
		ChunkCount: 42,
		Mode:       domain.ModeHybrid,
		DenseK:     10,
		SparseK:    10,
	}}
	server := newTestServer(svc)
	defer server.Close()

	resp, err := http.Get(server.URL + "/v1/rag/stats")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var stats domain.IndexStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if stats.Status != domain.IndexReady || stats.ChunkCount != 42 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestQueryRejectsWrongMethod(t *testing.T) {
	server := newTestServer(&stubService{})
	defer server.Close()

	resp, err := http.Get(server.URL + "/v1/rag/query")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}
