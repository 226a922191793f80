package main

import (
	"fmt"

	"github.com/4thel00z/semcache/internal"
	"github.com/spf13/cobra"
)

func NewEntitiesCmd(entitiesUC *internal.EntitiesUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entities <query>",
		Short: "List entities relevant to a query",
		Long:  `List the entities attached to the cached exchanges nearest to the query.`,
		Args:  cobra.ExactArgs(1),
		RunE:  makeEntitiesRunner(entitiesUC),
	}

	return cmd
}

func makeEntitiesRunner(entitiesUC *internal.EntitiesUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		scopeHint, _ := cmd.Flags().GetString("scope")
		asJSON, _ := cmd.Flags().GetBool("json")

		out, err := entitiesUC.Execute(cmd.Context(), internal.EntitiesInput{
			Query: args[0], Scope: scopeHint,
		})
		if err != nil {
			return fmt.Errorf("get entities: %w", err)
		}

		if asJSON {
			return outputJSON(cmd, out.Entities)
		}

		for _, e := range out.Entities {
			fmt.Fprintln(cmd.OutOrStdout(), e)
		}
		return nil
	}
}
