package v1

import "github.com/4thel00z/semcache/internal"

// Errors returned by Client, for use with errors.Is.
var (
	ErrEmbeddingUnavailable = internal.ErrEmbeddingUnavailable
	ErrPersistFormat        = internal.ErrPersistFormat
	ErrPersistWrite         = internal.ErrPersistWrite
	ErrInconsistency        = internal.ErrInconsistency
	ErrNotFound             = internal.ErrNotFound
	ErrInvalidQuery         = internal.ErrInvalidQuery
)
