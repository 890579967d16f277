package config

import "testing"

func TestLoadRetrievalDefaults(t *testing.T) {
	t.Setenv("RETRIEVAL_MODE", "")
	t.Setenv("SEMANTIC_RETRIEVER_K", "")
	t.Setenv("BM25_RETRIEVER_K", "")
	t.Setenv("ENSEMBLE_SEMANTIC_WEIGHT", "")
	t.Setenv("ENSEMBLE_BM25_WEIGHT", "")
	t.Setenv("RERANKER_TOP_K", "")

	cfg := Load()
	if cfg.RetrievalMode != "semantic" {
		t.Fatalf("expected default retrieval mode semantic, got %q", cfg.RetrievalMode)
	}
	if cfg.SemanticRetrieverK != 10 {
		t.Fatalf("expected default semantic retriever k 10, got %d", cfg.SemanticRetrieverK)
	}
	if cfg.BM25RetrieverK != 10 {
		t.Fatalf("expected default bm25 retriever k 10, got %d", cfg.BM25RetrieverK)
	}
	if cfg.EnsembleSemanticW != 0.5 || cfg.EnsembleBM25W != 0.5 {
		t.Fatalf("expected default ensemble weights 0.5/0.5, got %v/%v", cfg.EnsembleSemanticW, cfg.EnsembleBM25W)
	}
	if cfg.RerankerTopK != 3 {
		t.Fatalf("expected default reranker top k 3, got %d", cfg.RerankerTopK)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestLoadParsesRetrievalOverrides(t *testing.T) {
	t.Setenv("RETRIEVAL_MODE", "hybrid_reranker")
	t.Setenv("SEMANTIC_RETRIEVER_K", "20")
	t.Setenv("BM25_RETRIEVER_K", "15")
	t.Setenv("ENSEMBLE_SEMANTIC_WEIGHT", "0.7")
	t.Setenv("ENSEMBLE_BM25_WEIGHT", "0.3")
	t.Setenv("RERANKER_TOP_K", "5")

	cfg := Load()
	if cfg.RetrievalMode != "hybrid_reranker" {
		t.Fatalf("expected retrieval mode override, got %q", cfg.RetrievalMode)
	}
	if cfg.SemanticRetrieverK != 20 || cfg.BM25RetrieverK != 15 {
		t.Fatalf("expected retriever k overrides 20/15, got %d/%d", cfg.SemanticRetrieverK, cfg.BM25RetrieverK)
	}
	if cfg.EnsembleSemanticW != 0.7 || cfg.EnsembleBM25W != 0.3 {
		t.Fatalf("expected ensemble weight overrides 0.7/0.3, got %v/%v", cfg.EnsembleSemanticW, cfg.EnsembleBM25W)
	}
	if cfg.RerankerTopK != 5 {
		t.Fatalf("expected reranker top k 5, got %d", cfg.RerankerTopK)
	}

	params := cfg.RetrievalParams()
	if string(params.Mode) != "hybrid_reranker" || params.DenseK != 20 || params.SparseK != 15 || params.RerankTopK != 5 {
		t.Fatalf("unexpected retrieval params: %+v", params)
	}
}

func TestValidateRejectsUnknownMode(t *testing.T) {
	t.Setenv("RETRIEVAL_MODE", "keyword")

	cfg := Load()
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error for unknown retrieval mode")
	}
}

func TestValidateRejectsNegativeWeight(t *testing.T) {
	t.Setenv("RETRIEVAL_MODE", "hybrid")
	t.Setenv("ENSEMBLE_BM25_WEIGHT", "-0.1")

	cfg := Load()
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error for negative ensemble weight")
	}
}
