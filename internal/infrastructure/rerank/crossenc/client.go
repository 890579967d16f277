package crossenc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/kmalykh/bank-assistant/internal/infrastructure/resilience"
)

// Client scores query/passage pairs against a cross-encoder inference
// server (text-embeddings-inference style POST /rerank API).
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, model string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		executor:   executor,
	}
}

func (c *Client) Model() string { return c.model }

// Warmup verifies the inference server is up and has the model loaded.
func (c *Client) Warmup(ctx context.Context) error {
	fn := func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
		if err != nil {
			return fmt.Errorf("create warmup request: %w", err)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("reranker warmup request: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			return fmt.Errorf("reranker warmup status: %s: %s", resp.Status, strings.TrimSpace(string(body)))
		}
		return nil
	}
	if c.executor == nil {
		return fn(ctx)
	}
	return c.executor.Execute(ctx, "reranker_warmup", fn, classifyRerankError)
}

type rerankResult struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// ScorePairs returns one relevance score per passage, in passage order.
func (c *Client) ScorePairs(ctx context.Context, query string, passages []string) ([]float64, error) {
	if len(passages) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"query": query,
		"texts": passages,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal rerank request: %w", err)
	}

	var results []rerankResult
	fn := func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rerank", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create rerank request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("rerank request: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			return fmt.Errorf("rerank status: %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
		}
		results = results[:0]
		if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
			return fmt.Errorf("decode rerank response: %w", err)
		}
		return nil
	}

	if c.executor == nil {
		if err := fn(ctx); err != nil {
			return nil, err
		}
	} else if err := c.executor.Execute(ctx, "reranker_score", fn, classifyRerankError); err != nil {
		return nil, err
	}

	if len(results) != len(passages) {
		return nil, fmt.Errorf("rerank returned %d scores for %d passages", len(results), len(passages))
	}

	// The server returns results sorted by score; map them back to passage
	// order. A duplicated index would leave another passage unscored.
	scores := make([]float64, len(passages))
	seen := make([]bool, len(passages))
	for _, r := range results {
		if r.Index < 0 || r.Index >= len(passages) {
			return nil, fmt.Errorf("rerank result index %d out of range", r.Index)
		}
		if seen[r.Index] {
			return nil, fmt.Errorf("rerank result index %d duplicated", r.Index)
		}
		seen[r.Index] = true
		scores[r.Index] = r.Score
	}
	return scores, nil
}

func classifyRerankError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}
