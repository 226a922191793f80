package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// OpenEmbedder builds the configured embedding backend, memoized when
// cache.memo_size is positive.
func OpenEmbedder(cfg *Config) (Embedder, error) {
	var base Embedder

	switch cfg.Embeddings.Backend {
	case BackendOpenAI:
		e, err := NewOpenAIEmbedder(OpenAIConfig{
			APIKey:     cfg.Embeddings.APIKey,
			BaseURL:    cfg.Embeddings.BaseURL,
			Model:      cfg.Embeddings.Model,
			Dimension:  cfg.Embeddings.Dimension,
			MaxRetries: 2,
		})
		if err != nil {
			return nil, err
		}
		base = e
	case BackendHash:
		base = NewHashEmbedder(cfg.Embeddings.Dimension)
	default:
		return nil, fmt.Errorf("unknown embeddings backend %q", cfg.Embeddings.Backend)
	}

	if cfg.Cache.MemoSize > 0 {
		return NewMemoEmbedder(base, cfg.Cache.MemoSize), nil
	}
	return base, nil
}

// PersistLocation is the file or directory the configured backend stores
// the snapshot in.
func PersistLocation(scope Scope, cfg *Config) string {
	if cfg.Persistence.Path != "" {
		if filepath.IsAbs(cfg.Persistence.Path) {
			return cfg.Persistence.Path
		}
		return filepath.Join(scope.CachePath, cfg.Persistence.Path)
	}

	switch cfg.Persistence.Backend {
	case PersistGit:
		return scope.HistoryPath()
	case PersistSQLite:
		return scope.DBPath()
	default:
		return scope.SnapshotPath()
	}
}

// SnapshotFile is the single file whose changes mean the snapshot changed.
func SnapshotFile(scope Scope, cfg *Config) string {
	loc := PersistLocation(scope, cfg)
	if cfg.Persistence.Backend == PersistGit {
		return filepath.Join(loc, SnapshotFilename)
	}
	return loc
}

func OpenPersister(scope Scope, cfg *Config) (Persister, error) {
	loc := PersistLocation(scope, cfg)

	switch cfg.Persistence.Backend {
	case PersistFile:
		return NewFileStore(loc), nil
	case PersistGit:
		return NewGitStore(loc)
	case PersistSQLite:
		return NewSQLiteStore(loc)
	default:
		return nil, fmt.Errorf("unknown persistence backend %q", cfg.Persistence.Backend)
	}
}

// InitScope creates the scope's cache directory, writes cfg and prepares
// the persistence backend's storage.
func InitScope(scope Scope, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(scope.CachePath, 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	if err := SaveConfig(scope, cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	persister, err := OpenPersister(scope, cfg)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	if err := persister.Close(); err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	return nil
}

// OpenCache assembles the cache for an initialized scope.
func OpenCache(ctx context.Context, scope Scope, cfg *Config, logger *slog.Logger) (*SemanticCache, error) {
	if !scope.Initialized() {
		return nil, fmt.Errorf("%w: %s", ErrNotInitialized, scope.CachePath)
	}

	embedder, err := OpenEmbedder(cfg)
	if err != nil {
		return nil, fmt.Errorf("open embedder: %w", err)
	}

	return AssembleCache(ctx, scope, cfg, embedder, logger)
}

// AssembleCache builds the cache for scope around an existing embedder. The
// cache owns the embedder afterwards, and closes it on failure.
func AssembleCache(ctx context.Context, scope Scope, cfg *Config, embedder Embedder, logger *slog.Logger) (*SemanticCache, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	persister, err := OpenPersister(scope, cfg)
	if err != nil {
		embedder.Close()
		return nil, fmt.Errorf("open persister: %w", err)
	}

	cache, err := NewSemanticCache(ctx, embedder, persister,
		WithMaxHistory(cfg.Cache.MaxHistory),
		WithDimension(cfg.Embeddings.Dimension),
		WithTopK(cfg.Cache.TopK),
		WithLogger(logger.With("scope", string(scope.Type))),
	)
	if err != nil {
		persister.Close()
		embedder.Close()
		return nil, err
	}

	return cache, nil
}
