package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"sitevault/internal/catalog"
	"sitevault/internal/config"
	"sitevault/internal/pipeline"
	"sitevault/internal/report"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var locationName string
	var jurisdiction string
	var primaryCategory string
	var secondaryCategory string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "import <source-dir>",
		Short: "Ingest a source directory into a location's archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if locationName == "" {
				return fmt.Errorf("--location is required")
			}
			source, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}

			logger, err := ctx.buildLogger()
			if err != nil {
				return err
			}

			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				runner := pipeline.New(cfg, store, logger)
				summary, runErr := runner.Run(cmd.Context(), pipeline.ImportRequest{
					SourceDir:    source,
					LocationName: locationName,
					Meta: catalog.LocationMeta{
						Jurisdiction:      jurisdiction,
						PrimaryCategory:   primaryCategory,
						SecondaryCategory: secondaryCategory,
					},
				})
				if jsonOut {
					if err := writeJSON(cmd, summary); err != nil {
						return err
					}
				} else {
					printSummary(cmd, summary)
				}
				if runErr != nil {
					return runErr
				}
				if !summary.Success() {
					return fmt.Errorf("import finished with %d flagged asset(s); run `sitevault verify` after resolving them", len(summary.Flagged))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&locationName, "location", "l", "", "Location name (created on first use)")
	cmd.Flags().StringVar(&jurisdiction, "jurisdiction", "", "Location jurisdiction code")
	cmd.Flags().StringVar(&primaryCategory, "category", "", "Primary location category")
	cmd.Flags().StringVar(&secondaryCategory, "secondary-category", "", "Secondary location category")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the batch report as JSON")
	return cmd
}

func printSummary(cmd *cobra.Command, summary report.Summary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Location: %s (%s)\n", summary.LocationName, summary.LocationID)

	rows := [][]string{
		{"accepted", strconv.Itoa(summary.Accepted)},
		{"duplicates skipped", strconv.Itoa(summary.DuplicateSkipped)},
		{"unsupported skipped", strconv.Itoa(summary.UnsupportedSkipped)},
		{"unreadable skipped", strconv.Itoa(summary.UnreadableSkipped)},
		{"classification failures", strconv.Itoa(summary.ClassificationFailed)},
		{"verification failures", strconv.Itoa(summary.VerificationFailed)},
		{"lost", strconv.Itoa(summary.Lost)},
	}
	fmt.Fprintln(out, renderTable([]string{"Result", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))

	if len(summary.Flagged) > 0 {
		flagRows := make([][]string, 0, len(summary.Flagged))
		for _, flagged := range summary.Flagged {
			flagRows = append(flagRows, []string{flagged.Digest, flagged.Reason})
		}
		fmt.Fprintln(out, renderTable([]string{"Flagged Digest", "Reason"}, flagRows, nil))
	}
	fmt.Fprintf(out, "Success: %s\n", yesNo(summary.Success()))
}
