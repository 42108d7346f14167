package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"sitevault/internal/catalog"
	"sitevault/internal/config"
)

func newLocationsCommand(ctx *commandContext) *cobra.Command {
	locationsCmd := &cobra.Command{
		Use:   "locations",
		Short: "Manage location records",
	}

	locationsCmd.AddCommand(newLocationsListCommand(ctx))
	locationsCmd.AddCommand(newLocationsShowCommand(ctx))
	locationsCmd.AddCommand(newLocationsDeleteCommand(ctx))

	return locationsCmd
}

func newLocationsListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all locations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				locations, err := store.ListLocations(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, locations)
				}
				rows := make([][]string, 0, len(locations))
				for _, loc := range locations {
					rows = append(rows, []string{
						loc.ShortID(),
						loc.Name,
						loc.Jurisdiction,
						loc.PrimaryCategory,
						loc.CreatedAt.Format("2006-01-02"),
					})
				}
				headers := []string{"ID", "Name", "Jurisdiction", "Category", "Created"}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, nil))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit locations as JSON")
	return cmd
}

func newLocationsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <location-id>",
		Short: "Show one location and its asset counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				loc, err := resolveLocation(cmd, store, args[0])
				if err != nil {
					return err
				}
				assets, err := store.AssetsByLocation(cmd.Context(), loc.ID)
				if err != nil {
					return err
				}

				if jsonOut {
					return writeJSON(cmd, map[string]any{
						"location":    loc,
						"asset_count": len(assets),
					})
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:            %s\n", loc.ID)
				fmt.Fprintf(out, "Name:          %s\n", loc.Name)
				fmt.Fprintf(out, "Jurisdiction:  %s\n", loc.Jurisdiction)
				fmt.Fprintf(out, "Category:      %s\n", loc.PrimaryCategory)
				if loc.SecondaryCategory != "" {
					fmt.Fprintf(out, "Secondary:     %s\n", loc.SecondaryCategory)
				}
				fmt.Fprintf(out, "Created:       %s\n", loc.CreatedAt.Format("2006-01-02 15:04:05"))

				var archived, verified, flagged int
				for _, asset := range assets {
					if asset.Phase == catalog.PhaseArchived {
						archived++
					}
					if asset.Verified {
						verified++
					}
					if asset.Flagged() {
						flagged++
					}
				}
				rows := [][]string{
					{"total", strconv.Itoa(len(assets))},
					{"archived", strconv.Itoa(archived)},
					{"verified", strconv.Itoa(verified)},
					{"flagged", strconv.Itoa(flagged)},
				}
				fmt.Fprintln(out, renderTable([]string{"Assets", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the location as JSON")
	return cmd
}

func newLocationsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <location-id>",
		Short: "Delete a location that owns no assets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				loc, err := resolveLocation(cmd, store, args[0])
				if err != nil {
					return err
				}
				if err := store.DeleteLocation(cmd.Context(), loc.ID); err != nil {
					if errors.Is(err, catalog.ErrLocationInUse) {
						return fmt.Errorf("location %s still owns assets; locations with catalogued media cannot be deleted", loc.Name)
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted location %s (%s)\n", loc.Name, loc.ShortID())
				return nil
			})
		},
	}
}

// resolveLocation accepts a full UUID, a short id prefix, or an exact name.
func resolveLocation(cmd *cobra.Command, store *catalog.Store, ref string) (*catalog.Location, error) {
	if loc, err := store.LocationByID(cmd.Context(), ref); err == nil {
		return loc, nil
	}
	if loc, err := store.LocationByName(cmd.Context(), ref); err == nil {
		return loc, nil
	}
	locations, err := store.ListLocations(cmd.Context())
	if err != nil {
		return nil, err
	}
	var match *catalog.Location
	for _, loc := range locations {
		if loc.ShortID() == catalog.ShortID(ref) {
			if match != nil {
				return nil, fmt.Errorf("location reference %q is ambiguous", ref)
			}
			match = loc
		}
	}
	if match == nil {
		return nil, fmt.Errorf("no location matches %q", ref)
	}
	return match, nil
}
