package v1

import (
	"context"
	"time"
)

// Embedder turns text into a fixed-width vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
	Close() error
}

// Context is a stored exchange.
type Context struct {
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	Entities  []string  `json:"entities"`
	CreatedAt time.Time `json:"created_at"`
}

// SimilarContext is a search hit. Smaller distances are closer.
type SimilarContext struct {
	Context
	Distance float64 `json:"distance"`
}
