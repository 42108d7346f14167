package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"sitevault/internal/catalog"
	"sitevault/internal/committer"
	"sitevault/internal/config"
	"sitevault/internal/report"
)

func newRecoverCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "recover <location-id>",
		Short: "Repair catalog records whose files moved or disappeared",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.buildLogger()
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				loc, err := resolveLocation(cmd, store, args[0])
				if err != nil {
					return err
				}
				rep := report.New(loc.ID, loc.Name, time.Now().UTC())
				c := committer.New(cfg, store, logger, rep)
				result, err := c.Recover(cmd.Context(), loc.ID)
				if err != nil {
					return err
				}

				if jsonOut {
					if err := writeJSON(cmd, result); err != nil {
						return err
					}
				} else {
					out := cmd.OutOrStdout()
					fmt.Fprintf(out, "Location: %s (%s)\n", loc.Name, loc.ShortID())
					fmt.Fprintf(out, "Checked: %d  Intact: %d  Repaired: %d  Lost: %d\n",
						result.Checked, result.Intact, result.Repaired, result.Lost)
				}
				if result.Lost > 0 {
					return fmt.Errorf("%d asset(s) could not be recovered and were flagged as lost", result.Lost)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the recovery result as JSON")
	return cmd
}
