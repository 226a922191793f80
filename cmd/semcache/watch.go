package main

import (
	"fmt"
	"time"

	"github.com/4thel00z/semcache/internal"
	"github.com/spf13/cobra"
)

func NewWatchCmd(reloadUC *internal.ReloadUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reload the cache when its snapshot changes",
		Long:  `Watch the persisted snapshot and reload the cache whenever another process writes it.`,
		Args:  cobra.NoArgs,
		RunE:  makeWatchRunner(reloadUC),
	}

	cmd.Flags().Duration("debounce", internal.DefaultDebounce, "Debounce window for batching changes")
	return cmd
}

func makeWatchRunner(reloadUC *internal.ReloadUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		scopeHint, _ := cmd.Flags().GetString("scope")
		debounce, _ := cmd.Flags().GetDuration("debounce")

		scope := internal.NewScopeResolver().Resolve(scopeHint)
		if !scope.Initialized() {
			return fmt.Errorf("%w: %s", internal.ErrNotInitialized, scope.CachePath)
		}

		cfg, err := internal.LoadConfig(scope)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		// open before watching so a broken snapshot fails fast
		out, err := reloadUC.Execute(cmd.Context(), internal.ReloadInput{Scope: scopeHint})
		if err != nil {
			return fmt.Errorf("load cache: %w", err)
		}

		path := internal.SnapshotFile(scope, cfg)
		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (%d entries)...\n", path, out.Entries)

		onChange := func() {
			out, err := reloadUC.Execute(cmd.Context(), internal.ReloadInput{Scope: scopeHint})
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "reload failed: %v\n", err)
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] reloaded %d entries\n", time.Now().Format(time.TimeOnly), out.Entries)
		}
		onError := func(err error) {
			fmt.Fprintf(cmd.ErrOrStderr(), "watch error: %v\n", err)
		}

		return internal.WatchFile(cmd.Context(), path, debounce, onChange, onError)
	}
}
