package crossenc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestScorePairsMapsScoresToPassageOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rerank" {
			http.NotFound(w, r)
			return
		}
		var payload struct {
			Query string   `json:"query"`
			Texts []string `json:"texts"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if payload.Query != "кредитная карта" || len(payload.Texts) != 3 {
			t.Fatalf("unexpected request payload: %+v", payload)
		}
		// Sorted by score, the way inference servers respond.
		_, _ = w.Write([]byte(`[{"index":1,"score":0.9},{"index":2,"score":0.4},{"index":0,"score":0.1}]`))
	}))
	defer server.Close()

	client := New(server.URL, "bge-reranker", nil)
	scores, err := client.ScorePairs(context.Background(), "кредитная карта", []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("ScorePairs() error = %v", err)
	}
	if scores[0] != 0.1 || scores[1] != 0.9 || scores[2] != 0.4 {
		t.Fatalf("scores not mapped back to passage order: %v", scores)
	}
}

func TestScorePairsRejectsCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"index":0,"score":0.5}]`))
	}))
	defer server.Close()

	client := New(server.URL, "bge-reranker", nil)
	_, err := client.ScorePairs(context.Background(), "q", []string{"a", "b"})
	if err == nil {
		t.Fatalf("expected count mismatch error")
	}
}

func TestScorePairsRejectsDuplicateIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"index":0,"score":0.5},{"index":0,"score":0.7}]`))
	}))
	defer server.Close()

	client := New(server.URL, "bge-reranker", nil)
	_, err := client.ScorePairs(context.Background(), "q", []string{"a", "b"})
	if err == nil {
		t.Fatalf("expected duplicate index error")
	}
}

func TestScorePairsSurfacesHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(server.URL, "bge-reranker", nil)
	_, err := client.ScorePairs(context.Background(), "q", []string{"a"})
	if err == nil {
		t.Fatalf("expected error for 503 response")
	}
}

func TestWarmupChecksHealth(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(server.URL, "bge-reranker", nil)
	if err := client.Warmup(context.Background()); err != nil {
		t.Fatalf("Warmup() error = %v", err)
	}
	if path != "/health" {
		t.Fatalf("expected health probe, got %q", path)
	}
}

func TestWarmupFailsWhenServerDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "starting", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(server.URL, "bge-reranker", nil)
	if err := client.Warmup(context.Background()); err == nil {
		t.Fatalf("expected warmup failure")
	}
}
