package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one synchronization pass against the configured site.",
		Long: `sync walks the configured sitemap once, scans each matching page for PDF
links, uploads every document it can fetch, and then deletes remote files
that were not observed during this pass. The pass is idempotent: running it
again against an unchanged site uploads the same set and deletes nothing.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			// Cobra skips PersistentPostRun when RunE errors; Close is
			// idempotent, so teardown is guaranteed here instead.
			defer a.Close()

			orch, err := a.Orchestrator()
			if err != nil {
				return err
			}

			summary, err := orch.Run(cmd.Context())
			if err != nil {
				a.Logger().Error("synchronization pass aborted",
					zap.String("run_id", summary.RunID),
					zap.Error(err))
				return err
			}
			return nil
		},
	}
}
