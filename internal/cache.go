package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"
)

const (
	DefaultMaxHistory = 10
	DefaultTopK       = 3
)

type CacheOption func(*cacheConfig)

type cacheConfig struct {
	maxHistory int
	topK       int
	dimension  int
	logger     *slog.Logger
	clock      func() time.Time
}

// WithMaxHistory sets the capacity. Values below 1 are ignored.
func WithMaxHistory(n int) CacheOption {
	return func(c *cacheConfig) {
		if n > 0 {
			c.maxHistory = n
		}
	}
}

// WithTopK sets how many matches a search returns when the caller asks for
// none. Values below 1 are ignored.
func WithTopK(k int) CacheOption {
	return func(c *cacheConfig) {
		if k > 0 {
			c.topK = k
		}
	}
}

// WithDimension fixes the embedding width. Defaults to the embedder's.
func WithDimension(d int) CacheOption {
	return func(c *cacheConfig) {
		c.dimension = d
	}
}

func WithLogger(l *slog.Logger) CacheOption {
	return func(c *cacheConfig) {
		c.logger = l
	}
}

// WithClock replaces time.Now as the source of creation timestamps.
func WithClock(clock func() time.Time) CacheOption {
	return func(c *cacheConfig) {
		c.clock = clock
	}
}

// SemanticCache is a bounded store of (query, response) exchanges searchable
// by embedding similarity. Mutations hold the write lock from the embedding
// call through the snapshot write; searches hold the read lock.
//
// Persistence is best effort: when a save fails the in-memory change is kept
// and the error wraps ErrPersistWrite.
type SemanticCache struct {
	mu sync.RWMutex

	embedder  Embedder
	persister Persister

	index    *FlatIndex
	contexts *ContextStore
	// ids[i] is the query stored at index position i
	ids []string

	maxHistory  int
	topK        int
	logger      *slog.Logger
	clock       func() time.Time
	lastCreated time.Time
}

// NewSemanticCache builds a cache and restores the persisted snapshot. A
// malformed snapshot fails construction with ErrPersistFormat rather than
// starting empty over the top of it. When an over-capacity snapshot is
// trimmed but the trimmed state cannot be saved, the usable cache is returned
// together with an error wrapping ErrPersistWrite.
func NewSemanticCache(ctx context.Context, embedder Embedder, persister Persister, opts ...CacheOption) (*SemanticCache, error) {
	if embedder == nil {
		return nil, fmt.Errorf("semantic cache: nil embedder")
	}
	if persister == nil {
		return nil, fmt.Errorf("semantic cache: nil persister")
	}

	cfg := cacheConfig{
		maxHistory: DefaultMaxHistory,
		topK:       DefaultTopK,
		clock:      time.Now,
	}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.dimension <= 0 {
		cfg.dimension = embedder.Dimension()
	}
	if cfg.dimension <= 0 {
		cfg.dimension = DefaultDimension
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}

	index, err := NewFlatIndex(cfg.dimension)
	if err != nil {
		return nil, err
	}

	c := &SemanticCache{
		embedder:   embedder,
		persister:  persister,
		index:      index,
		contexts:   NewContextStore(),
		maxHistory: cfg.maxHistory,
		topK:       cfg.topK,
		logger:     cfg.logger,
		clock:      cfg.clock,
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.loadLocked(ctx); err != nil {
		if errors.Is(err, ErrPersistWrite) {
			return c, err
		}
		return nil, err
	}
	return c, nil
}

// AddContext embeds query and stores the exchange. An existing entry for the
// same query is replaced. When the cache grows past its capacity the entry
// created first is evicted. The resulting state is saved before returning.
func (c *SemanticCache) AddContext(ctx context.Context, query, response string, entities []string) error {
	if err := ValidateQuery(query); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	vec, err := c.embed(ctx, query)
	if err != nil {
		return err
	}

	entry := NewEntry(query, response, entities, vec, c.nextTimestamp())

	if _, exists := c.contexts.Get(query); exists {
		if err := c.removeLocked(query); err != nil {
			return err
		}
		c.logger.Debug("replacing context", "query", query)
	}

	pos, err := c.index.Append(entry.Embedding)
	if err != nil {
		return fmt.Errorf("%w: append: %v", ErrInconsistency, err)
	}
	c.contexts.Put(entry)
	c.ids = append(c.ids, query)
	if pos != len(c.ids)-1 {
		return fmt.Errorf("%w: appended at %d with %d ids", ErrInconsistency, pos, len(c.ids))
	}

	if c.contexts.Len() > c.maxHistory {
		oldest, _ := c.contexts.Oldest()
		if err := c.removeLocked(oldest.Query); err != nil {
			return err
		}
		c.logger.Info("evicted context", "query", oldest.Query, "created_at", oldest.CreatedAt)
	}

	if err := c.checkConsistency(); err != nil {
		return err
	}

	return c.persistLocked(ctx)
}

// Remove deletes the entry for query and saves the resulting state.
func (c *SemanticCache) Remove(ctx context.Context, query string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.removeLocked(query); err != nil {
		return err
	}
	if err := c.checkConsistency(); err != nil {
		return err
	}
	return c.persistLocked(ctx)
}

// FindSimilarContexts returns up to topK stored entries nearest to query,
// closest first. A topK below 1 means the configured default, 3 unless
// WithTopK says otherwise. An empty cache yields an empty slice.
func (c *SemanticCache) FindSimilarContexts(ctx context.Context, query string, topK int) ([]Match, error) {
	if err := ValidateQuery(query); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = c.topK
	}

	// embedding touches no cache state, so it runs before taking the lock
	vec, err := c.embed(ctx, query)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	hits, err := c.index.Search(vec, topK)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %v", ErrInconsistency, err)
	}

	matches := make([]Match, 0, len(hits))
	for _, h := range hits {
		if h.Position < 0 || h.Position >= len(c.ids) {
			return nil, fmt.Errorf("%w: hit at position %d with %d ids", ErrInconsistency, h.Position, len(c.ids))
		}
		e, ok := c.contexts.Get(c.ids[h.Position])
		if !ok {
			return nil, fmt.Errorf("%w: no context for indexed query %q", ErrInconsistency, c.ids[h.Position])
		}
		matches = append(matches, Match{Entry: e, Distance: h.Distance})
	}

	return matches, nil
}

// GetRelevantEntities returns the union of entities across the DefaultTopK
// nearest entries, whatever WithTopK says. The result is sorted, but callers
// should treat it as a set.
func (c *SemanticCache) GetRelevantEntities(ctx context.Context, query string) ([]string, error) {
	matches, err := c.FindSimilarContexts(ctx, query, DefaultTopK)
	if err != nil {
		return nil, err
	}

	var all []string
	for _, m := range matches {
		all = append(all, m.Entities...)
	}
	return normalizeEntities(all), nil
}

func (c *SemanticCache) Get(query string) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.contexts.Get(query)
}

// Entries returns every entry ordered by creation time.
func (c *SemanticCache) Entries() []*Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.contexts.Entries()
}

func (c *SemanticCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.contexts.Len()
}

func (c *SemanticCache) MaxHistory() int {
	return c.maxHistory
}

func (c *SemanticCache) TopK() int {
	return c.topK
}

func (c *SemanticCache) Dimension() int {
	return c.index.Dimension()
}

// Reload replaces the in-memory state with the persisted snapshot. If the
// snapshot cannot be read the current state is kept. A failed save of a
// trimmed snapshot keeps the loaded state and wraps ErrPersistWrite.
func (c *SemanticCache) Reload(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadLocked(ctx)
}

// Restore runs write against the persister under the write lock and then
// reloads from it, so no mutation can interleave between the two. If write
// fails nothing is reloaded.
func (c *SemanticCache) Restore(ctx context.Context, write func(Persister) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := write(c.persister); err != nil {
		return err
	}
	return c.loadLocked(ctx)
}

// View runs read against the persister under the read lock, excluding
// concurrent saves.
func (c *SemanticCache) View(read func(Persister) error) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return read(c.persister)
}

// Close releases the persister and the embedder.
func (c *SemanticCache) Close() error {
	return errors.Join(c.persister.Close(), c.embedder.Close())
}

func (c *SemanticCache) embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingUnavailable, err)
	}
	if len(vec) != c.index.Dimension() {
		return nil, fmt.Errorf("%w: %w: expected %d, got %d", ErrEmbeddingUnavailable, ErrDimensionMismatch, c.index.Dimension(), len(vec))
	}
	if !finite(vec) {
		return nil, fmt.Errorf("%w: embedding contains NaN or Inf", ErrEmbeddingUnavailable)
	}
	return vec, nil
}

func (c *SemanticCache) loadLocked(ctx context.Context) error {
	snap, err := c.persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	entries, err := snap.Entries(c.index.Dimension())
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	var trimmed []*Entry
	if len(entries) > c.maxHistory {
		cut := len(entries) - c.maxHistory
		trimmed, entries = entries[:cut], entries[cut:]
	}

	if err := c.replaceLocked(entries); err != nil {
		return err
	}

	c.logger.Info("loaded snapshot", "entries", len(entries), "capacity", c.maxHistory)

	if len(trimmed) == 0 {
		return nil
	}
	for _, e := range trimmed {
		c.logger.Info("evicted context", "query", e.Query, "created_at", e.CreatedAt, "reason", "over capacity on load")
	}
	return c.persistLocked(ctx)
}

// replaceLocked swaps in entries, which must already be in creation order.
func (c *SemanticCache) replaceLocked(entries []*Entry) error {
	vecs := make([][]float32, len(entries))
	ids := make([]string, len(entries))
	for i, e := range entries {
		vecs[i] = e.Embedding
		ids[i] = e.Query
	}

	if err := c.index.Rebuild(vecs); err != nil {
		return fmt.Errorf("%w: rebuild: %v", ErrInconsistency, err)
	}

	c.contexts.Reset()
	for _, e := range entries {
		c.contexts.Put(e)
	}
	c.ids = ids

	if n := len(entries); n > 0 && entries[n-1].CreatedAt.After(c.lastCreated) {
		c.lastCreated = entries[n-1].CreatedAt
	}

	return c.checkConsistency()
}

// removeLocked drops query from the context store and rebuilds the index
// over the remaining vectors, keeping their relative order.
func (c *SemanticCache) removeLocked(query string) error {
	if _, ok := c.contexts.Get(query); !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, query)
	}

	pos := slices.Index(c.ids, query)
	if pos < 0 {
		return fmt.Errorf("%w: context %q is not indexed", ErrInconsistency, query)
	}

	ids := slices.Delete(slices.Clone(c.ids), pos, pos+1)
	vecs := make([][]float32, len(ids))
	for i, id := range ids {
		e, ok := c.contexts.Get(id)
		if !ok {
			return fmt.Errorf("%w: indexed query %q has no context", ErrInconsistency, id)
		}
		vecs[i] = e.Embedding
	}

	if err := c.index.Rebuild(vecs); err != nil {
		return fmt.Errorf("%w: rebuild: %v", ErrInconsistency, err)
	}
	c.contexts.Remove(query)
	c.ids = ids
	return nil
}

func (c *SemanticCache) persistLocked(ctx context.Context) error {
	snap := NewSnapshot(c.contexts.Entries())
	if err := c.persister.Save(ctx, snap); err != nil {
		c.logger.Warn("saving snapshot failed, keeping in-memory state", "entries", snap.Len(), "error", err)
		return fmt.Errorf("%w: %w", ErrPersistWrite, err)
	}
	return nil
}

func (c *SemanticCache) checkConsistency() error {
	if len(c.ids) != c.contexts.Len() || len(c.ids) != c.index.Len() {
		return fmt.Errorf("%w: %d ids, %d contexts, %d vectors", ErrInconsistency, len(c.ids), c.contexts.Len(), c.index.Len())
	}

	seen := make(map[string]struct{}, len(c.ids))
	for _, id := range c.ids {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: query %q indexed twice", ErrInconsistency, id)
		}
		seen[id] = struct{}{}
		if _, ok := c.contexts.Get(id); !ok {
			return fmt.Errorf("%w: indexed query %q has no context", ErrInconsistency, id)
		}
	}
	return nil
}

// nextTimestamp returns a creation time strictly after every previous one,
// at microsecond precision so it survives the float-seconds snapshot format.
func (c *SemanticCache) nextTimestamp() time.Time {
	t := c.clock().UTC().Truncate(time.Microsecond)
	if !t.After(c.lastCreated) {
		t = c.lastCreated.Add(time.Microsecond)
	}
	c.lastCreated = t
	return t
}
