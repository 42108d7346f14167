package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"sitevault/internal/catalog"
	"sitevault/internal/config"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show catalog totals and flagged assets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				flagged, err := store.FlaggedAssets(cmd.Context())
				if err != nil {
					return err
				}

				if jsonOut {
					return writeJSON(cmd, map[string]any{
						"catalog_path": store.Path(),
						"stats":        stats,
					})
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Catalog: %s\n", store.Path())
				rows := [][]string{
					{"locations", strconv.Itoa(stats.Locations)},
					{"assets", strconv.Itoa(stats.Assets)},
					{"staged", strconv.Itoa(stats.Staged)},
					{"archived", strconv.Itoa(stats.Archived)},
					{"verified", strconv.Itoa(stats.Verified)},
					{"flagged", strconv.Itoa(stats.Flagged)},
				}
				fmt.Fprintln(out, renderTable([]string{"Totals", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))

				if len(flagged) > 0 {
					flagRows := make([][]string, 0, len(flagged))
					for _, asset := range flagged {
						flagRows = append(flagRows, []string{
							asset.Digest.Short(),
							catalog.ShortID(asset.LocationID),
							string(asset.Flag),
							asset.CurrentPath,
						})
					}
					headers := []string{"Digest", "Location", "Flag", "Current Path"}
					fmt.Fprintln(out, renderTable(headers, flagRows, nil))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit status as JSON")
	return cmd
}
