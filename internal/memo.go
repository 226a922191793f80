package internal

import (
	"context"
	"slices"
	"sync"
)

var _ Embedder = (*MemoEmbedder)(nil)

// MemoEmbedder remembers up to capacity embeddings. When full, the entry
// memoized first is dropped, mirroring the cache's own eviction rule.
// Failed calls are never remembered.
type MemoEmbedder struct {
	next     Embedder
	capacity int

	mu    sync.Mutex
	memo  map[string][]float32
	order []string
}

func NewMemoEmbedder(next Embedder, capacity int) *MemoEmbedder {
	return &MemoEmbedder{
		next:     next,
		capacity: capacity,
		memo:     make(map[string][]float32),
	}
}

func (m *MemoEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.capacity <= 0 {
		return m.next.Embed(ctx, text)
	}

	m.mu.Lock()
	vec, ok := m.memo[text]
	m.mu.Unlock()
	if ok {
		return slices.Clone(vec), nil
	}

	vec, err := m.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.memo[text]; !ok {
		if len(m.order) >= m.capacity {
			delete(m.memo, m.order[0])
			m.order = m.order[1:]
		}
		m.memo[text] = slices.Clone(vec)
		m.order = append(m.order, text)
	}

	return vec, nil
}

func (m *MemoEmbedder) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.order)
}

func (m *MemoEmbedder) Dimension() int {
	return m.next.Dimension()
}

func (m *MemoEmbedder) Close() error {
	return m.next.Close()
}
