package internal

import (
	"context"
	"fmt"
)

// CacheService runs cache operations against the cache of a resolved scope.
type CacheService struct {
	resolver *ScopeResolver
	cacheFor func(Scope) (*SemanticCache, error)
}

func NewCacheService(
	resolver *ScopeResolver,
	cacheFor func(Scope) (*SemanticCache, error),
) *CacheService {
	return &CacheService{
		resolver: resolver,
		cacheFor: cacheFor,
	}
}

// Add stores the exchange and returns the entry as stored. A failed save
// still returns the entry together with the error, since the cache keeps it.
func (s *CacheService) Add(ctx context.Context, query, response string, entities []string, scopeHint string) (*Entry, error) {
	cache, err := s.cache(scopeHint)
	if err != nil {
		return nil, err
	}

	addErr := cache.AddContext(ctx, query, response, entities)
	entry, ok := cache.Get(query)
	if !ok {
		if addErr != nil {
			return nil, addErr
		}
		return nil, fmt.Errorf("%w: %q missing after add", ErrInconsistency, query)
	}
	return entry, addErr
}

func (s *CacheService) Similar(ctx context.Context, query string, k int, scopeHint string) ([]Match, error) {
	cache, err := s.cache(scopeHint)
	if err != nil {
		return nil, err
	}
	return cache.FindSimilarContexts(ctx, query, k)
}

func (s *CacheService) Entities(ctx context.Context, query, scopeHint string) ([]string, error) {
	cache, err := s.cache(scopeHint)
	if err != nil {
		return nil, err
	}
	return cache.GetRelevantEntities(ctx, query)
}

func (s *CacheService) List(ctx context.Context, scopeHint string) ([]*Entry, error) {
	cache, err := s.cache(scopeHint)
	if err != nil {
		return nil, err
	}
	return cache.Entries(), nil
}

func (s *CacheService) Remove(ctx context.Context, query, scopeHint string) error {
	cache, err := s.cache(scopeHint)
	if err != nil {
		return err
	}
	return cache.Remove(ctx, query)
}

func (s *CacheService) Reload(ctx context.Context, scopeHint string) (int, error) {
	cache, err := s.cache(scopeHint)
	if err != nil {
		return 0, err
	}
	if err := cache.Reload(ctx); err != nil {
		return 0, err
	}
	return cache.Len(), nil
}

func (s *CacheService) cache(scopeHint string) (*SemanticCache, error) {
	scope := s.resolver.Resolve(scopeHint)
	cache, err := s.cacheFor(scope)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return cache, nil
}

// HistoryService reads and rewinds the snapshot history kept by the git
// persistence backend. Every repository access goes through the scope's
// cache lock, so history operations never interleave with saves.
type HistoryService struct {
	resolver *ScopeResolver
	cacheFor func(Scope) (*SemanticCache, error)
}

func NewHistoryService(
	resolver *ScopeResolver,
	cacheFor func(Scope) (*SemanticCache, error),
) *HistoryService {
	return &HistoryService{
		resolver: resolver,
		cacheFor: cacheFor,
	}
}

func (s *HistoryService) Log(ctx context.Context, limit int, scopeHint string) ([]*Commit, error) {
	cache, err := s.cache(scopeHint)
	if err != nil {
		return nil, err
	}

	var commits []*Commit
	err = cache.View(func(p Persister) error {
		store, err := gitStore(p)
		if err != nil {
			return err
		}
		commits, err = store.Log(ctx, limit)
		return err
	})
	return commits, err
}

func (s *HistoryService) Diff(ctx context.Context, from, to, scopeHint string) (string, error) {
	cache, err := s.cache(scopeHint)
	if err != nil {
		return "", err
	}

	var diff string
	err = cache.View(func(p Persister) error {
		store, err := gitStore(p)
		if err != nil {
			return err
		}
		diff, err = store.Diff(ctx, from, to)
		return err
	})
	return diff, err
}

// Revert restores the snapshot stored at ref as a new commit and reloads the
// cache from it in one step.
func (s *HistoryService) Revert(ctx context.Context, ref, scopeHint string) (*Commit, error) {
	cache, err := s.cache(scopeHint)
	if err != nil {
		return nil, err
	}

	var commit *Commit
	err = cache.Restore(ctx, func(p Persister) error {
		store, err := gitStore(p)
		if err != nil {
			return err
		}
		commit, err = store.Revert(ctx, ref)
		if err != nil {
			return fmt.Errorf("revert: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return commit, nil
}

func (s *HistoryService) cache(scopeHint string) (*SemanticCache, error) {
	scope := s.resolver.Resolve(scopeHint)
	cache, err := s.cacheFor(scope)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return cache, nil
}

func gitStore(p Persister) (*GitStore, error) {
	store, ok := p.(*GitStore)
	if !ok {
		return nil, ErrNoHistory
	}
	return store, nil
}
