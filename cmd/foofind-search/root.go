package main

import (
	"github.com/spf13/cobra"

	"github.com/psyvisions/foofind-web/internal/config"
	"github.com/psyvisions/foofind-web/internal/version"
)

func newRootCmd() *cobra.Command {
	var env string

	cmd := &cobra.Command{
		Use:   "foofind-search",
		Short: "File search API over a SphinxQL daemon",
		Long: `foofind-search plans keyword searches over the files index, runs them on the
search daemon in one batch and serves the answers over HTTP.

Without a subcommand it starts the HTTP API (same as 'serve').`,
		Version:      version.Version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), env)
		},
	}
	cmd.SetVersionTemplate(version.String() + "\n")
	cmd.PersistentFlags().StringVar(&env, "env", config.GetEnv(), "Configuration environment: local, dev, prod")

	cmd.AddCommand(
		newServeCmd(&env),
		newSearchCmd(&env),
		newRelatedCmd(&env),
		newBlockCmd(&env, true),
		newBlockCmd(&env, false),
		newLocateCmd(&env),
		newSourcesCmd(&env),
	)
	return cmd
}
