package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"sitevault/internal/catalog"
	"sitevault/internal/config"
	"sitevault/internal/report"
	"sitevault/internal/verifier"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var since time.Duration

	cmd := &cobra.Command{
		Use:   "verify <location-id>",
		Short: "Re-hash archived assets of a location against the catalog",
		Long: "Re-hash archived assets of a location against the catalog.\n\n" +
			"By default every archived asset is checked. With --since only assets\n" +
			"staged within the given window are checked, resuming the verification\n" +
			"step of a recent import batch.",
		Args: cobra.ExactArgs(1),
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
				v := verifier.New(cfg, store, logger, rep)

				if since > 0 {
					batch := catalog.Batch{LocationID: loc.ID, Since: time.Now().UTC().Add(-since)}
					if err := v.Execute(cmd.Context(), batch); err != nil {
						return err
					}
					sum := rep.Snapshot()
					if jsonOut {
						if err := writeJSON(cmd, sum); err != nil {
							return err
						}
					} else {
						out := cmd.OutOrStdout()
						fmt.Fprintf(out, "Location: %s (%s)\n", loc.Name, loc.ShortID())
						fmt.Fprintf(out, "Failed: %d\n", sum.VerificationFailed)
					}
					if sum.VerificationFailed > 0 {
						return fmt.Errorf("%d asset(s) failed verification and were flagged", sum.VerificationFailed)
					}
					return nil
				}

				sweep, err := v.Sweep(cmd.Context(), loc.ID)
				if err != nil {
					return err
				}
				if jsonOut {
					if err := writeJSON(cmd, sweep); err != nil {
						return err
					}
				} else {
					out := cmd.OutOrStdout()
					fmt.Fprintf(out, "Location: %s (%s)\n", loc.Name, loc.ShortID())
					fmt.Fprintf(out, "Checked: %d  Passed: %d  Failed: %d  Skipped: %d\n",
						sweep.Checked, sweep.Passed, sweep.Failed, sweep.Skipped)
				}
				if sweep.Failed > 0 {
					return fmt.Errorf("%d asset(s) failed verification and were flagged", sweep.Failed)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the result as JSON")
	cmd.Flags().DurationVar(&since, "since", 0, "Only check assets staged within this window (e.g. 24h)")
	return cmd
}
