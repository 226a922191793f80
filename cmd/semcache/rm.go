package main

import (
	"fmt"

	"github.com/4thel00z/semcache/internal"
	"github.com/spf13/cobra"
)

func NewRmCmd(removeUC *internal.RemoveContextUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rm <query>",
		Aliases: []string{"del", "delete"},
		Short:   "Remove a cached exchange",
		Long:    `Remove the cached exchange stored for a query.`,
		Args:    cobra.ExactArgs(1),
		RunE:    makeRmRunner(removeUC),
	}

	return cmd
}

func makeRmRunner(removeUC *internal.RemoveContextUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		scopeHint, _ := cmd.Flags().GetString("scope")

		err := removeUC.Execute(cmd.Context(), internal.RemoveContextInput{
			Query: args[0], Scope: scopeHint,
		})
		if err != nil {
			return fmt.Errorf("remove context: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
		return nil
	}
}
