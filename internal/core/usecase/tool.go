package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kmalykh/bank-assistant/internal/core/domain"
	"github.com/kmalykh/bank-assistant/internal/core/ports"
)

// KnowledgeSearchTool exposes retrieval to agent runtimes as a callable
// tool. An unready index is not a tool failure: the agent receives an empty
// source list and a note it can relay to the user.
type KnowledgeSearchTool struct {
	service ports.RetrievalService
	logger  *slog.Logger
}

func NewKnowledgeSearchTool(service ports.RetrievalService, logger *slog.Logger) *KnowledgeSearchTool {
	if logger == nil {
		logger = slog.Default()
	}
	return &KnowledgeSearchTool{service: service, logger: logger}
}

func (t *KnowledgeSearchTool) Name() string { return "rag_search" }

func (t *KnowledgeSearchTool) Description() string {
	return "Search the bank knowledge base (deposits, cards, loans) and answer the question using retrieved documents."
}

type toolSource struct {
	Source string `json:"source"`
	Page   int    `json:"page,omitempty"`
	Text   string `json:"text"`
}

type toolResponse struct {
	Answer  string       `json:"answer"`
	Sources []toolSource `json:"sources"`
	Note    string       `json:"note,omitempty"`
}

func (t *KnowledgeSearchTool) Invoke(ctx context.Context, args map[string]any) (string, error) {
	query, _ := args["query"].(string)
	if strings.TrimSpace(query) == "" {
		return "", domain.WrapError(domain.ErrMalformedQuery, "rag_search", errEmptyQuestion)
	}

	answer, err := t.service.Answer(ctx, query, nil)
	if err != nil {
		if domain.IsKind(err, domain.ErrNotReady) {
			return marshalToolResponse(toolResponse{
				Sources: []toolSource{},
				Note:    "knowledge base is not indexed yet",
			})
		}
		return "", fmt.Errorf("rag_search: %w", err)
	}

	resp := toolResponse{Answer: answer.Text, Sources: make([]toolSource, 0, len(answer.Sources))}
	for _, chunk := range answer.Sources {
		resp.Sources = append(resp.Sources, toolSource{Source: chunk.Source, Page: chunk.Page, Text: chunk.Text})
	}
	return marshalToolResponse(resp)
}

func marshalToolResponse(resp toolResponse) (string, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("marshal tool response: %w", err)
	}
	return string(data), nil
}
