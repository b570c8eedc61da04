package domain

import "errors"

// Error taxonomy shared by the ingestion and query paths.
// Adapters wrap these so callers can classify failures with errors.Is.
var (
	// ErrInvalidConfiguration is fatal at startup: bad chunk size, bad index
	// parameters, or vectors of different dimensions in one corpus.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrDimensionMismatch means a query vector does not match the index dimension.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrMalformedInput covers document rows missing required fields and
	// embedding values that do not parse back into a vector.
	ErrMalformedInput = errors.New("malformed input")

	// ErrProviderFailure is an unexpected error from the embedder or the vector index.
	ErrProviderFailure = errors.New("provider failure")
)
