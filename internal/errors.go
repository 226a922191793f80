package internal

import "errors"

var (
	// ErrEmbeddingUnavailable is returned when the embedder fails or yields
	// an unusable vector. The triggering operation leaves the cache untouched.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")

	// ErrPersistFormat is returned when a snapshot exists but does not match
	// the expected schema.
	ErrPersistFormat = errors.New("malformed snapshot")

	// ErrPersistWrite is returned when saving fails after an in-memory
	// mutation. The mutation is kept; durability is degraded until the next
	// successful save.
	ErrPersistWrite = errors.New("snapshot write failed")

	// ErrInconsistency signals a broken index/context invariant. It is a bug,
	// not a recoverable condition.
	ErrInconsistency = errors.New("cache inconsistency")

	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrNotFound          = errors.New("context not found")
	ErrInvalidQuery      = errors.New("invalid query")
	ErrNotInitialized    = errors.New("semcache not initialized")
	ErrNoHistory         = errors.New("history requires the git persistence backend")
)
