package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotReady            = errors.New("index not ready")
	ErrMalformedQuery      = errors.New("malformed query")
	ErrEmbedding           = errors.New("embedding failure")
	ErrLLMProvider         = errors.New("llm provider failure")
	ErrRerankerUnavailable = errors.New("reranker unavailable")
	ErrIndexBuild          = errors.New("index build failure")
	ErrTemporary           = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
