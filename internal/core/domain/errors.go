package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed input: empty or oversized text,
	// mismatched matrix dimensions, or a non-square matrix.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates malformed configuration: a threshold
	// outside [0,1] or a negative minimum section length.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrProviderUnavailable indicates the embedding provider could not be
	// reached. Semantic similarity is disabled without it; callers decide
	// whether to fall back to lexical comparison.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")

	// ErrProviderFailure indicates the embedding provider failed mid-batch.
	ErrProviderFailure = errors.New("embedding provider failure")

	// ErrCancelled indicates a caller-initiated abort of a long-running
	// pairwise scan. Partial results are discarded.
	ErrCancelled = errors.New("analysis cancelled")
)
