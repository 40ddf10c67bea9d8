package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrPipelineConfig marks a feature pipeline that cannot be built,
	// e.g. two bindings producing the same composite feature key.
	ErrPipelineConfig = errors.New("invalid pipeline configuration")

	// ErrMalformedTree marks a dependency tree that violates the
	// single-root, acyclic head structure.
	ErrMalformedTree = errors.New("malformed dependency tree")

	// ErrFrozenVocabulary is returned when a frozen vocabulary is asked to allocate.
	ErrFrozenVocabulary = errors.New("vocabulary is frozen")

	// ErrArtifactFormat marks a model artifact that cannot be decoded.
	ErrArtifactFormat = errors.New("incompatible model artifact")
)
