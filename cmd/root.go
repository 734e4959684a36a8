// Package cmd defines the pdfmirror command line interface.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cirslinger/pdfmirror/internal/app"
	"github.com/cirslinger/pdfmirror/internal/config"
)

var cfgFile string

type appKeyType string

const appKey appKeyType = "app"

// newApp is a variable so tests can substitute a factory.
var newApp = func(ctx context.Context, cfg config.Config) (*app.App, error) {
	return app.New(ctx, cfg)
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pdfmirror",
		Short: "Mirror a site's PDF documents into a remote storage folder.",
		Long: `pdfmirror discovers PDF documents through a site's sitemap, downloads
them, and keeps a remote storage folder in sync: new documents are uploaded
and remote files no longer referenced by the site are deleted.`,

		// Builds the service container after flags are parsed and before any
		// subcommand runs, so subcommands only need to pull it from context.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("initialize services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, a))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a, ok := cmd.Context().Value(appKey).(*app.App); ok && a != nil {
				a.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default reads PDFMIRROR_* environment variables)")

	cmd.AddCommand(newSyncCmd())

	return cmd
}

func appFrom(cmd *cobra.Command) (*app.App, error) {
	a, ok := cmd.Context().Value(appKey).(*app.App)
	if !ok || a == nil {
		return nil, fmt.Errorf("application services not initialized")
	}
	return a, nil
}

// Execute runs the CLI. It is the process entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
