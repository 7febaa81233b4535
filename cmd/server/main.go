package main

import (
	"os"

	"github.com/dmitrijs2005/gophtasks/internal/buildinfo"
	"github.com/dmitrijs2005/gophtasks/internal/server"
	"github.com/dmitrijs2005/gophtasks/internal/server/config"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gophtasks-server",
		Short:         "gophtasks task manager server",
		Version:       buildinfo.Version(),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	config.BindFlags(rootCmd.PersistentFlags())

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Apply migrations and serve the HTTP API and gRPC health endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()
			return app.Run(cmd.Context())
		},
	}

	var down bool
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending migrations (or revert the latest with --down) and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()
			if down {
				return app.Rollback(cmd.Context())
			}
			return app.Migrate(cmd.Context())
		},
	}
	migrateCmd.Flags().BoolVar(&down, "down", false, "revert the most recently applied migration")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	}

	rootCmd.AddCommand(serveCmd, migrateCmd, versionCmd)

	// a bare invocation serves, like the plain binary always did
	rootCmd.RunE = serveCmd.RunE

	return rootCmd
}

func newApp(cmd *cobra.Command) (*server.App, error) {
	cfg, err := config.LoadConfig(cmd.Flags())
	if err != nil {
		return nil, err
	}
	return server.NewApp(cfg, os.Stdout)
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
