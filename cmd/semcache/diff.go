package main

import (
	"fmt"

	"github.com/4thel00z/semcache/internal"
	"github.com/spf13/cobra"
)

func NewDiffCmd(diffUC *internal.DiffUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <from> [to]",
		Short: "Show changes between snapshots",
		Long:  `Show how the cached exchanges changed between two revisions. The second revision defaults to HEAD.`,
		Args:  cobra.RangeArgs(1, 2),
		RunE:  makeDiffRunner(diffUC),
	}

	return cmd
}

func makeDiffRunner(diffUC *internal.DiffUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		from, to := args[0], ""
		if len(args) > 1 {
			to = args[1]
		}

		scopeHint, _ := cmd.Flags().GetString("scope")

		out, err := diffUC.Execute(cmd.Context(), internal.DiffInput{
			From: from, To: to, Scope: scopeHint,
		})
		if err != nil {
			return fmt.Errorf("get diff: %w", err)
		}

		if out.Diff == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "No changes.")
			return nil
		}

		fmt.Fprint(cmd.OutOrStdout(), out.Diff)
		return nil
	}
}
