package httpadapter

import (
	"net/http"

	"github.com/kmalykh/bank-assistant/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrMalformedQuery):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrNotReady):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrEmbedding),
		domain.IsKind(err, domain.ErrLLMProvider),
		domain.IsKind(err, domain.ErrIndexBuild):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// userFacingMessage hides provider internals behind stable messages; raw
// error chains go to the log, not the client.
func userFacingMessage(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrMalformedQuery):
		return "question is required"
	case domain.IsKind(err, domain.ErrNotReady):
		return "knowledge base is not indexed yet, run reindex first"
	case domain.IsKind(err, domain.ErrTemporary):
		return "assistant is temporarily unavailable, try again later"
	case domain.IsKind(err, domain.ErrEmbedding),
		domain.IsKind(err, domain.ErrLLMProvider):
		return "language model provider is unavailable"
	case domain.IsKind(err, domain.ErrIndexBuild):
		return "index rebuild failed"
	default:
		return "internal error"
	}
}
