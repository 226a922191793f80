package v1

import "log/slog"

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	dir        string
	scope      string
	maxHistory int
	dimension  int
	embedder   Embedder
	logger     *slog.Logger
}

// WithDir stores the cache in dir instead of a resolved scope. The directory
// is created when missing and may hold a config.yaml.
func WithDir(dir string) Option {
	return func(c *clientConfig) {
		c.dir = dir
	}
}

// WithScope forces a specific scope (global or project).
func WithScope(scope string) Option {
	return func(c *clientConfig) {
		c.scope = scope
	}
}

// WithMaxHistory overrides the configured capacity.
func WithMaxHistory(n int) Option {
	return func(c *clientConfig) {
		c.maxHistory = n
	}
}

// WithDimension sets the embedding dimension.
func WithDimension(dim int) Option {
	return func(c *clientConfig) {
		c.dimension = dim
	}
}

// WithEmbedder replaces the configured embedding backend. The client closes
// it on Close.
func WithEmbedder(e Embedder) Option {
	return func(c *clientConfig) {
		c.embedder = e
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}
