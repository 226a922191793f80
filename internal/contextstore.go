package internal

import (
	"slices"
	"strings"
)

// ContextStore maps a query to its Entry. It is not synchronized on its own;
// SemanticCache guards it together with the index.
type ContextStore struct {
	entries map[string]*Entry
}

func NewContextStore() *ContextStore {
	return &ContextStore{entries: make(map[string]*Entry)}
}

// Put inserts or replaces the entry for e.Query and reports whether an
// entry was replaced.
func (s *ContextStore) Put(e *Entry) bool {
	_, existed := s.entries[e.Query]
	s.entries[e.Query] = e
	return existed
}

func (s *ContextStore) Get(query string) (*Entry, bool) {
	e, ok := s.entries[query]
	return e, ok
}

func (s *ContextStore) Remove(query string) bool {
	if _, ok := s.entries[query]; !ok {
		return false
	}
	delete(s.entries, query)
	return true
}

// Oldest returns the entry with the smallest CreatedAt. Ties go to the
// lexically smaller query so the choice is deterministic.
func (s *ContextStore) Oldest() (*Entry, bool) {
	var oldest *Entry
	for _, e := range s.entries {
		if oldest == nil || olderThan(e, oldest) {
			oldest = e
		}
	}
	return oldest, oldest != nil
}

func (s *ContextStore) Len() int {
	return len(s.entries)
}

// Entries returns all entries ordered by ascending CreatedAt.
func (s *ContextStore) Entries() []*Entry {
	out := make([]*Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sortByCreation(out)
	return out
}

func (s *ContextStore) Reset() {
	s.entries = make(map[string]*Entry)
}

func olderThan(a, b *Entry) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.Query < b.Query
}

func sortByCreation(entries []*Entry) {
	slices.SortFunc(entries, func(a, b *Entry) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Query, b.Query)
	})
}
