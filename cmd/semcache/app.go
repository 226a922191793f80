package main

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/4thel00z/semcache/internal"
)

// app holds the use cases of one process. Caches are opened on first use
// per scope and closed together on exit.
type app struct {
	resolver *internal.ScopeResolver
	logOut   io.Writer

	addUC      *internal.AddContextUseCase
	similarUC  *internal.FindSimilarUseCase
	entitiesUC *internal.EntitiesUseCase
	listUC     *internal.ListContextsUseCase
	removeUC   *internal.RemoveContextUseCase
	reloadUC   *internal.ReloadUseCase
	logUC      *internal.LogUseCase
	diffUC     *internal.DiffUseCase
	revertUC   *internal.RevertUseCase

	mu     sync.Mutex
	caches map[string]*internal.SemanticCache
}

func newApp(logOut io.Writer) *app {
	a := &app{
		resolver: internal.NewScopeResolver(),
		logOut:   logOut,
		caches:   make(map[string]*internal.SemanticCache),
	}

	cacheSvc := internal.NewCacheService(a.resolver, a.cacheFor)
	historySvc := internal.NewHistoryService(a.resolver, a.cacheFor)

	a.addUC = internal.NewAddContextUseCase(cacheSvc)
	a.similarUC = internal.NewFindSimilarUseCase(cacheSvc)
	a.entitiesUC = internal.NewEntitiesUseCase(cacheSvc)
	a.listUC = internal.NewListContextsUseCase(cacheSvc)
	a.removeUC = internal.NewRemoveContextUseCase(cacheSvc)
	a.reloadUC = internal.NewReloadUseCase(cacheSvc)
	a.logUC = internal.NewLogUseCase(historySvc)
	a.diffUC = internal.NewDiffUseCase(historySvc)
	a.revertUC = internal.NewRevertUseCase(historySvc)
	return a
}

func (a *app) cacheFor(scope internal.Scope) (*internal.SemanticCache, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if c, ok := a.caches[scope.CachePath]; ok {
		return c, nil
	}

	cfg, err := internal.LoadConfig(scope)
	if err != nil {
		return nil, err
	}
	logger, err := internal.NewLogger(cfg.Log, a.logOut)
	if err != nil {
		return nil, err
	}

	c, err := internal.OpenCache(context.Background(), scope, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.caches[scope.CachePath] = c
	return c, nil
}

func (a *app) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	for path, c := range a.caches {
		errs = append(errs, c.Close())
		delete(a.caches, path)
	}
	return errors.Join(errs...)
}
