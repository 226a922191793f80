package main

import (
	"fmt"
	"os"

	"github.com/4thel00z/semcache/internal"
	"github.com/spf13/cobra"
)

func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new cache",
		Long:  `Initialize a new .semcache directory with its config and storage.`,
		RunE:  runInit,
	}

	cmd.Flags().Bool("global", false, "Initialize global scope (~/.semcache)")
	cmd.Flags().String("embeddings", internal.BackendOpenAI, "Embeddings backend (openai|hash)")
	cmd.Flags().String("persistence", internal.PersistFile, "Persistence backend (file|git|sqlite)")
	cmd.Flags().Int("dimension", internal.DefaultDimension, "Embedding dimension")
	cmd.Flags().Int("max-history", internal.DefaultMaxHistory, "Maximum number of cached exchanges")
	return cmd
}

func runInit(cmd *cobra.Command, _ []string) error {
	isGlobal, _ := cmd.Flags().GetBool("global")

	var scope internal.Scope
	if isGlobal {
		scope = internal.NewScopeResolver().Global()
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		scope = internal.ProjectScope(cwd)
	}

	if scope.Initialized() {
		return fmt.Errorf("already initialized at %s", scope.CachePath)
	}

	cfg, err := initConfig(cmd)
	if err != nil {
		return err
	}

	if err := internal.InitScope(scope, cfg); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized cache at %s\n", scope.CachePath)
	return nil
}

func initConfig(cmd *cobra.Command) (*internal.Config, error) {
	embeddings, _ := cmd.Flags().GetString("embeddings")
	persistence, _ := cmd.Flags().GetString("persistence")
	dimension, _ := cmd.Flags().GetInt("dimension")
	maxHistory, _ := cmd.Flags().GetInt("max-history")

	cfg := internal.DefaultConfig()
	cfg.Embeddings.Backend = embeddings
	cfg.Embeddings.Dimension = dimension
	cfg.Persistence.Backend = persistence
	cfg.Cache.MaxHistory = maxHistory

	return cfg, cfg.Validate()
}
