package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/kmalykh/bank-assistant/internal/core/domain"
)

type Config struct {
	APIPort  string
	LogLevel string

	DataDir      string
	ChunkSize    int
	ChunkOverlap int

	RetrievalMode      string
	SemanticRetrieverK int
	BM25RetrieverK     int
	EnsembleSemanticW  float64
	EnsembleBM25W      float64
	RerankerTopK       int

	CrossEncoderURL   string
	CrossEncoderModel string

	OllamaURL        string
	OllamaGenModel   string
	OllamaEmbedModel string

	NATSURL            string
	NATSReindexSubject string
	NATSEventSubject   string

	ReindexOnStart bool
	ShowSources    bool
}

func Load() Config {
	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		DataDir:      mustEnv("DATA_DIR", "./data"),
		ChunkSize:    mustEnvInt("CHUNK_SIZE", 1500),
		ChunkOverlap: mustEnvInt("CHUNK_OVERLAP", 150),

		RetrievalMode:      mustEnv("RETRIEVAL_MODE", "semantic"),
		SemanticRetrieverK: mustEnvInt("SEMANTIC_RETRIEVER_K", 10),
		BM25RetrieverK:     mustEnvInt("BM25_RETRIEVER_K", 10),
		EnsembleSemanticW:  mustEnvFloat("ENSEMBLE_SEMANTIC_WEIGHT", 0.5),
		EnsembleBM25W:      mustEnvFloat("ENSEMBLE_BM25_WEIGHT", 0.5),
		RerankerTopK:       mustEnvInt("RERANKER_TOP_K", 3),

		CrossEncoderURL:   mustEnv("CROSS_ENCODER_URL", "http://localhost:8081"),
		CrossEncoderModel: mustEnv("CROSS_ENCODER_MODEL", "BAAI/bge-reranker-v2-m3"),

		OllamaURL:        mustEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaGenModel:   mustEnv("OLLAMA_GEN_MODEL", "llama3.1:8b"),
		OllamaEmbedModel: mustEnv("OLLAMA_EMBED_MODEL", "nomic-embed-text"),

		NATSURL:            mustEnv("NATS_URL", "nats://localhost:4222"),
		NATSReindexSubject: mustEnv("NATS_REINDEX_SUBJECT", "corpus.reindex"),
		NATSEventSubject:   mustEnv("NATS_EVENT_SUBJECT", "corpus.reindexed"),

		ReindexOnStart: mustEnvBool("REINDEX_ON_START", false),
		ShowSources:    mustEnvBool("SHOW_SOURCES", true),
	}
}

// Validate rejects configurations that would only fail deep inside a query.
func (c Config) Validate() error {
	if !domain.RetrievalMode(c.RetrievalMode).Valid() {
		return fmt.Errorf("unknown RETRIEVAL_MODE %q (expected semantic, hybrid or hybrid_reranker)", c.RetrievalMode)
	}
	if c.SemanticRetrieverK <= 0 {
		return fmt.Errorf("SEMANTIC_RETRIEVER_K must be positive, got %d", c.SemanticRetrieverK)
	}
	if c.BM25RetrieverK <= 0 {
		return fmt.Errorf("BM25_RETRIEVER_K must be positive, got %d", c.BM25RetrieverK)
	}
	if c.EnsembleSemanticW < 0 || c.EnsembleBM25W < 0 {
		return fmt.Errorf("ensemble weights must be non-negative, got %v and %v", c.EnsembleSemanticW, c.EnsembleBM25W)
	}
	if c.RerankerTopK <= 0 {
		return fmt.Errorf("RERANKER_TOP_K must be positive, got %d", c.RerankerTopK)
	}
	return nil
}

// RetrievalParams maps the env-level knobs onto the retrieval pipeline.
func (c Config) RetrievalParams() domain.RetrievalParams {
	return domain.RetrievalParams{
		Mode:         domain.RetrievalMode(c.RetrievalMode),
		DenseK:       c.SemanticRetrieverK,
		SparseK:      c.BM25RetrieverK,
		DenseWeight:  c.EnsembleSemanticW,
		SparseWeight: c.EnsembleBM25W,
		RerankTopK:   c.RerankerTopK,
		RerankModel:  c.CrossEncoderModel,
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
