package v1

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/4thel00z/semcache/internal"
)

// Client provides programmatic access to a semantic cache.
type Client struct {
	cache *internal.SemanticCache
}

// New opens the cache described by the options and the scope's config.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	scope, err := resolveScope(cfg)
	if err != nil {
		return nil, err
	}

	conf, err := internal.LoadConfig(scope)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.maxHistory > 0 {
		conf.Cache.MaxHistory = cfg.maxHistory
	}
	switch {
	case cfg.dimension > 0:
		conf.Embeddings.Dimension = cfg.dimension
	case cfg.embedder != nil && cfg.embedder.Dimension() > 0:
		conf.Embeddings.Dimension = cfg.embedder.Dimension()
	}

	var cache *internal.SemanticCache
	if cfg.embedder != nil {
		cache, err = internal.AssembleCache(ctx, scope, conf, cfg.embedder, cfg.logger)
	} else {
		cache, err = internal.OpenCache(ctx, scope, conf, cfg.logger)
	}
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	return &Client{cache: cache}, nil
}

func resolveScope(cfg *clientConfig) (internal.Scope, error) {
	if cfg.dir == "" {
		return internal.NewScopeResolver().Resolve(cfg.scope), nil
	}

	if err := os.MkdirAll(cfg.dir, 0755); err != nil {
		return internal.Scope{}, fmt.Errorf("create cache directory: %w", err)
	}
	return internal.Scope{
		Type:      internal.ScopeProject,
		Path:      cfg.dir,
		CachePath: cfg.dir,
	}, nil
}

// Add stores an exchange, replacing any earlier one for the same query.
func (c *Client) Add(ctx context.Context, query, response string, entities ...string) error {
	if err := c.cache.AddContext(ctx, query, response, entities); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	return nil
}

// Similar returns up to k stored exchanges closest to query. k below 1 means
// the configured default.
func (c *Client) Similar(ctx context.Context, query string, k int) ([]SimilarContext, error) {
	matches, err := c.cache.FindSimilarContexts(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("similar: %w", err)
	}

	out := make([]SimilarContext, 0, len(matches))
	for _, m := range matches {
		out = append(out, SimilarContext{Context: toContext(m.Entry), Distance: m.Distance})
	}
	return out, nil
}

// Entities returns the entities attached to the exchanges nearest to query.
func (c *Client) Entities(ctx context.Context, query string) ([]string, error) {
	entities, err := c.cache.GetRelevantEntities(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("entities: %w", err)
	}
	return entities, nil
}

// Get returns the exchange stored for query.
func (c *Client) Get(query string) (Context, bool) {
	e, ok := c.cache.Get(query)
	if !ok {
		return Context{}, false
	}
	return toContext(e), true
}

// Remove deletes the exchange stored for query.
func (c *Client) Remove(ctx context.Context, query string) error {
	if err := c.cache.Remove(ctx, query); err != nil {
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

// List returns every stored exchange, oldest first.
func (c *Client) List() []Context {
	entries := c.cache.Entries()
	out := make([]Context, 0, len(entries))
	for _, e := range entries {
		out = append(out, toContext(e))
	}
	return out
}

func (c *Client) Len() int {
	return c.cache.Len()
}

// Close releases the cache's storage and embedder.
func (c *Client) Close() error {
	return c.cache.Close()
}

func toContext(e *internal.Entry) Context {
	return Context{
		Query:     e.Query,
		Response:  e.Response,
		Entities:  slices.Clone(e.Entities),
		CreatedAt: e.CreatedAt,
	}
}
