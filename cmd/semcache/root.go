package main

import "github.com/spf13/cobra"

func NewRootCmd(version string, a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "semcache",
		Short:         "Bounded semantic cache for query/response exchanges",
		Long:          `Store past query/response exchanges and look them up by embedding similarity.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)

	if a != nil {
		addSubcommands(rootCmd, a)
	}

	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("scope", "", "Target scope (global|project)")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
}

func addSubcommands(root *cobra.Command, a *app) {
	root.AddCommand(
		NewInitCmd(),
		NewAddCmd(a.addUC),
		NewSimilarCmd(a.similarUC),
		NewEntitiesCmd(a.entitiesUC),
		NewListCmd(a.listUC),
		NewRmCmd(a.removeUC),
		NewLogCmd(a.logUC),
		NewDiffCmd(a.diffUC),
		NewRevertCmd(a.revertUC),
		NewWatchCmd(a.reloadUC),
	)
}
