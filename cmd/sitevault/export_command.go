package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sitevault/internal/catalog"
	"sitevault/internal/config"
	"sitevault/internal/export"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "export <location-id>",
		Short: "Export a location's catalog snapshot as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				loc, err := resolveLocation(cmd, store, args[0])
				if err != nil {
					return err
				}
				snapshot, err := export.Build(cmd.Context(), store, loc.ID)
				if err != nil {
					return err
				}

				if outputPath == "" {
					return export.Write(cmd.OutOrStdout(), snapshot)
				}
				target, err := config.ExpandPath(outputPath)
				if err != nil {
					return err
				}
				f, err := os.Create(target)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				defer f.Close()
				if err := export.Write(f, snapshot); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d asset(s) to %s\n", len(snapshot.Assets), target)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the snapshot to a file instead of stdout")
	return cmd
}
