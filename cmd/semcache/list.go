package main

import (
	"fmt"
	"time"

	"github.com/4thel00z/semcache/internal"
	"github.com/spf13/cobra"
)

func NewListCmd(listUC *internal.ListContextsUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List cached exchanges",
		Long:    `List all cached exchanges, oldest first.`,
		Args:    cobra.NoArgs,
		RunE:    makeListRunner(listUC),
	}

	return cmd
}

func makeListRunner(listUC *internal.ListContextsUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		scopeHint, _ := cmd.Flags().GetString("scope")
		asJSON, _ := cmd.Flags().GetBool("json")

		out, err := listUC.Execute(cmd.Context(), internal.ListContextsInput{Scope: scopeHint})
		if err != nil {
			return fmt.Errorf("list contexts: %w", err)
		}

		if asJSON {
			items := make([]map[string]any, 0, len(out.Contexts))
			for _, c := range out.Contexts {
				items = append(items, contextJSON(c))
			}
			return outputJSON(cmd, items)
		}

		for _, e := range out.Contexts {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", e.CreatedAt.Format(time.RFC3339), e.Query)
		}
		return nil
	}
}
