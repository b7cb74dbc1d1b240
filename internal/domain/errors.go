package domain

import "errors"

var (
	// ErrIndexUnavailable signals that the embedding index could not be built.
	// Callers must degrade to "no context available", never abort the request.
	ErrIndexUnavailable = errors.New("embedding index unavailable")
	// ErrCacheCorrupt signals an unreadable persisted cache blob.
	ErrCacheCorrupt = errors.New("cache corrupt")
	// ErrEmbeddingFailure signals a failed embedding call for a single query.
	ErrEmbeddingFailure = errors.New("embedding failure")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrGenerationFailed signals a text-generation provider failure.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrConfigInvalid signals malformed configuration. Fatal at startup only,
	// never surfaced at request time.
	ErrConfigInvalid = errors.New("invalid configuration")
)
