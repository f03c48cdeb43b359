package domain

import "errors"

var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown backend or file type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrExtractionFailed indicates a file could not be converted to text.
	// Callers degrade to an empty document rather than failing.
	ErrExtractionFailed = errors.New("text extraction failed")

	// ErrEmbeddingUnavailable indicates the embedding backend could not be
	// initialised or failed while embedding.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)
