package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/kmalykh/bank-assistant/internal/core/domain"
	"github.com/kmalykh/bank-assistant/internal/core/ports"
	"github.com/kmalykh/bank-assistant/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	service ports.RetrievalService
	metrics *metrics.HTTPServerMetrics
	logger  *slog.Logger
	mode    domain.RetrievalMode
}

func NewRouter(service ports.RetrievalService, m *metrics.HTTPServerMetrics, mode domain.RetrievalMode, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		service: service,
		metrics: m,
		logger:  logger,
		mode:    mode,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/rag/query", rt.queryRAG)
	mux.HandleFunc("/v1/rag/reindex", rt.reindex)
	mux.HandleFunc("/v1/rag/stats", rt.stats)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(rt.logger, handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) queryRAG(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Question string           `json:"question"`
		History  []domain.Message `json:"history"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	start := time.Now()
	answer, err := rt.service.Answer(r.Context(), req.Question, req.History)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordRAGObservation(serviceName, string(rt.mode), len(answer.Sources), answer.Exact, time.Since(start))
		if rt.mode == domain.ModeHybridReranker && servedWithoutRerank(answer.Sources) {
			rt.metrics.RecordRerankFallback(serviceName)
		}
	}
	writeJSON(w, http.StatusOK, answer)
}

// servedWithoutRerank reports whether a hybrid_reranker answer was degraded
// to the fused ordering.
func servedWithoutRerank(sources []domain.RetrievedChunk) bool {
	for _, chunk := range sources {
		if chunk.Origin != domain.OriginReranked {
			return true
		}
	}
	return false
}

func (rt *Router) reindex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	if rt.service.Stats().Reindexing {
		writeJSON(w, http.StatusAccepted, domain.ReindexResult{Status: domain.ReindexAlreadyRunning})
		return
	}

	// Rebuilding the corpus outlives the request.
	ctx := context.WithoutCancel(r.Context())
	go func() {
		start := time.Now()
		result, err := rt.service.Reindex(ctx)
		if rt.metrics != nil {
			rt.metrics.RecordReindex(serviceName, time.Since(start), err)
		}
		if err != nil {
			rt.logger.Error("background reindex failed", "error", err)
			return
		}
		rt.logger.Info("background reindex finished", "status", result.Status, "chunks", result.ChunkCount)
	}()

	writeJSON(w, http.StatusAccepted, domain.ReindexResult{Status: domain.ReindexStarted})
}

func (rt *Router) stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, rt.service.Stats())
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= 500 {
		rt.logger.Error("request failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeJSON(w, status, map[string]string{"error": userFacingMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
