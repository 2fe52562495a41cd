package domain

import "errors"

// Domain errors represent business logic failures.
// Services wrap them with detail; callers test with errors.Is.
var (
	// ErrNotFound indicates a requested entity does not exist
	// or does not belong to the requesting owner.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists under another owner.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or missing input.
	// It is returned before any side effect takes place.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedModel indicates the requested model is not on the allow-list.
	ErrUnsupportedModel = errors.New("unsupported model")

	// Provider Errors.

	// ErrEmbeddingUnavailable indicates the embedding provider could not be
	// reached or returned an unusable vector.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGenerationFailed indicates the LLM provider failed to produce an answer.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrLLMUnavailable indicates no LLM service is configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)
