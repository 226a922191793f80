package internal

import "context"

// Embedder turns text into a fixed-length vector. Implementations may be
// network-backed and are expected to honour ctx cancellation.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
	Close() error
}
