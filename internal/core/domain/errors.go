package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrGenerationFailed indicates the external generative model
	// errored. Surfaced to the caller, never swallowed into an
	// empty answer.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrIndexUnavailable indicates the external index is not configured
	// or unreachable.
	ErrIndexUnavailable = errors.New("index unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Semantic retrieval is disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrSourceUnavailable indicates the document source cannot be
	// enumerated.
	ErrSourceUnavailable = errors.New("document source unavailable")
)
