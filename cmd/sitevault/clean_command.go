package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"sitevault/internal/catalog"
	"sitevault/internal/config"
	"sitevault/internal/staging"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var maxAge time.Duration

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Reclaim released staging files older than the age threshold",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.buildLogger()
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				result := staging.CleanStale(cmd.Context(), store, cfg.Paths.StagingDir, maxAge, logger)

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Removed %d staging path(s)\n", len(result.Removed))
				for _, cleanupErr := range result.Errors {
					fmt.Fprintf(out, "warning: %s: %v\n", cleanupErr.Path, cleanupErr.Error)
				}
				if len(result.Errors) > 0 {
					return fmt.Errorf("%d path(s) could not be cleaned", len(result.Errors))
				}
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&maxAge, "max-age", 72*time.Hour, "Minimum age before a released staging file is removed")
	return cmd
}
