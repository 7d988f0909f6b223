package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or query type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrHelpCenterUnavailable indicates the help-center API is not configured.
	ErrHelpCenterUnavailable = errors.New("help center unavailable")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Answering questions is disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Vector search and indexing are disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector-search service is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrUpstream indicates an external service returned a malformed or failed response.
	ErrUpstream = errors.New("upstream service error")
)
