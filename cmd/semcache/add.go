package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/4thel00z/semcache/internal"
	"github.com/spf13/cobra"
)

func NewAddCmd(addUC *internal.AddContextUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <query> [response]",
		Short: "Cache a query and its response",
		Long:  `Cache a query with its response, replacing any earlier entry for the same query. Reads the response from stdin if not provided.`,
		Args:  cobra.RangeArgs(1, 2),
		RunE:  makeAddRunner(addUC),
	}

	cmd.Flags().StringSliceP("entity", "e", nil, "Entity attached to the exchange (repeatable)")
	return cmd
}

func makeAddRunner(addUC *internal.AddContextUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		query := args[0]

		response, err := resolveResponse(cmd, args)
		if err != nil {
			return err
		}

		entities, _ := cmd.Flags().GetStringSlice("entity")
		scopeHint, _ := cmd.Flags().GetString("scope")
		asJSON, _ := cmd.Flags().GetBool("json")

		entry, err := addUC.Execute(cmd.Context(), internal.AddContextInput{
			Query: query, Response: response, Entities: entities, Scope: scopeHint,
		})
		if err != nil {
			return fmt.Errorf("add context: %w", err)
		}

		if asJSON {
			return outputJSON(cmd, contextJSON(*entry))
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", entry.Query)
		return nil
	}
}

func resolveResponse(cmd *cobra.Command, args []string) (string, error) {
	if len(args) >= 2 {
		return args[1], nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}
