package main

import (
	"fmt"

	"github.com/4thel00z/semcache/internal"
	"github.com/spf13/cobra"
)

func NewSimilarCmd(similarUC *internal.FindSimilarUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "similar <query>",
		Aliases: []string{"search"},
		Short:   "Find cached exchanges similar to a query",
		Long:    `Find the cached exchanges whose queries are nearest to the given query, closest first.`,
		Args:    cobra.ExactArgs(1),
		RunE:    makeSimilarRunner(similarUC),
	}

	cmd.Flags().IntP("number", "n", 0, "Maximum results (default from config)")
	return cmd
}

func makeSimilarRunner(similarUC *internal.FindSimilarUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("number")
		scopeHint, _ := cmd.Flags().GetString("scope")
		asJSON, _ := cmd.Flags().GetBool("json")

		out, err := similarUC.Execute(cmd.Context(), internal.FindSimilarInput{
			Query: args[0], Limit: limit, Scope: scopeHint,
		})
		if err != nil {
			return fmt.Errorf("find similar: %w", err)
		}

		if asJSON {
			items := make([]map[string]any, 0, len(out.Results))
			for _, r := range out.Results {
				item := contextJSON(r.ContextOutput)
				item["distance"] = r.Distance
				items = append(items, item)
			}
			return outputJSON(cmd, items)
		}

		for _, r := range out.Results {
			fmt.Fprintf(cmd.OutOrStdout(), "%.4f  %s\n", r.Distance, r.Query)
			fmt.Fprintf(cmd.OutOrStdout(), "        %s\n", r.Response)
		}
		return nil
	}
}
