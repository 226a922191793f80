package main

import (
	"fmt"

	"github.com/4thel00z/semcache/internal"
	"github.com/spf13/cobra"
)

func NewRevertCmd(revertUC *internal.RevertUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revert <ref>",
		Short: "Restore an earlier snapshot",
		Long:  `Restore the cache to the snapshot saved at ref. The restore is recorded as a new commit.`,
		Args:  cobra.ExactArgs(1),
		RunE:  makeRevertRunner(revertUC),
	}

	return cmd
}

func makeRevertRunner(revertUC *internal.RevertUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		scopeHint, _ := cmd.Flags().GetString("scope")
		asJSON, _ := cmd.Flags().GetBool("json")

		commit, err := revertUC.Execute(cmd.Context(), internal.RevertInput{
			Ref: args[0], Scope: scopeHint,
		})
		if err != nil {
			return fmt.Errorf("revert: %w", err)
		}

		if asJSON {
			return outputJSON(cmd, commitJSON(*commit))
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Restored %s [%s]\n", args[0], commit.Hash[:7])
		return nil
	}
}
