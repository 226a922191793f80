package internal

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	BackendOpenAI = "openai"
	BackendHash   = "hash"

	PersistFile   = "file"
	PersistGit    = "git"
	PersistSQLite = "sqlite"

	DefaultMemoSize = 128
)

type CacheSettings struct {
	MaxHistory int `yaml:"max_history"`
	TopK       int `yaml:"top_k"`
	MemoSize   int `yaml:"memo_size"`
}

type EmbeddingsConfig struct {
	Backend   string `yaml:"backend"`
	Model     string `yaml:"model"`
	Dimension int    `yaml:"dimension"`
	APIKey    string `yaml:"api_key,omitempty"`
	BaseURL   string `yaml:"base_url,omitempty"`
}

type PersistenceConfig struct {
	Backend string `yaml:"backend"`
	// Path overrides the backend's default location inside the scope.
	Path string `yaml:"path,omitempty"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Config struct {
	Cache       CacheSettings     `yaml:"cache"`
	Embeddings  EmbeddingsConfig  `yaml:"embeddings"`
	Persistence PersistenceConfig `yaml:"persistence"`
	Log         LogConfig         `yaml:"log"`
}

func DefaultConfig() *Config {
	return &Config{
		Cache: CacheSettings{
			MaxHistory: DefaultMaxHistory,
			TopK:       DefaultTopK,
			MemoSize:   DefaultMemoSize,
		},
		Embeddings: EmbeddingsConfig{
			Backend:   BackendOpenAI,
			Model:     DefaultEmbeddingModel,
			Dimension: DefaultDimension,
		},
		Persistence: PersistenceConfig{
			Backend: PersistFile,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig reads the scope's config file over the defaults. A missing file
// yields the defaults.
func LoadConfig(scope Scope) (*Config, error) {
	path := scope.ConfigPath()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func SaveConfig(scope Scope, cfg *Config) error {
	path := scope.ConfigPath()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

func (c *Config) Validate() error {
	if c.Cache.MaxHistory < 1 {
		return fmt.Errorf("invalid config: cache.max_history must be positive, got %d", c.Cache.MaxHistory)
	}
	if c.Cache.TopK < 1 {
		return fmt.Errorf("invalid config: cache.top_k must be positive, got %d", c.Cache.TopK)
	}
	if c.Cache.MemoSize < 0 {
		return fmt.Errorf("invalid config: cache.memo_size must not be negative, got %d", c.Cache.MemoSize)
	}
	if c.Embeddings.Dimension < 1 {
		return fmt.Errorf("invalid config: embeddings.dimension must be positive, got %d", c.Embeddings.Dimension)
	}

	switch c.Embeddings.Backend {
	case BackendOpenAI:
		if fixedWidthModel(c.Embeddings.Model) && c.Embeddings.Dimension != DefaultDimension {
			return fmt.Errorf("invalid config: model %s only produces %d dimensions, got %d",
				DefaultEmbeddingModel, DefaultDimension, c.Embeddings.Dimension)
		}
	case BackendHash:
	default:
		return fmt.Errorf("invalid config: unknown embeddings backend %q", c.Embeddings.Backend)
	}

	switch c.Persistence.Backend {
	case PersistFile, PersistGit, PersistSQLite:
	default:
		return fmt.Errorf("invalid config: unknown persistence backend %q", c.Persistence.Backend)
	}

	if _, err := parseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid config: unknown log format %q", c.Log.Format)
	}

	return nil
}

// NewLogger builds the logger described by cfg, writing to w.
func NewLogger(cfg LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}
