package verifier

import (
	"context"

	"sitevault/internal/catalog"
	"sitevault/internal/hashing"
	"sitevault/internal/logging"
	"sitevault/internal/services"
)

// SweepReport summarizes a full re-verification of one location.
type SweepReport struct {
	LocationID string `json:"location_id"`
	Checked    int    `json:"checked"`
	Passed     int    `json:"passed"`
	Failed     int    `json:"failed"`
	Skipped    int    `json:"skipped"`
}

// Sweep re-hashes every archived asset of a location against the catalog,
// including assets that passed verification before. Mismatches are flagged;
// staged and already flagged assets are skipped.
func (v *Verifier) Sweep(ctx context.Context, locationID string) (SweepReport, error) {
	ctx = services.WithStage(ctx, "verifying")
	ctx = services.WithLocation(ctx, locationID)
	logger := logging.WithContext(ctx, v.logger)

	rep := SweepReport{LocationID: locationID}
	assets, err := v.store.AssetsByLocation(ctx, locationID)
	if err != nil {
		return rep, services.Wrap(services.ErrTransient, "verifying", "list assets", "Failed to list location assets", err)
	}

	for _, asset := range assets {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if asset.Phase != catalog.PhaseArchived || asset.Flagged() {
			rep.Skipped++
			continue
		}
		rep.Checked++

		got, err := hashing.HashFile(asset.CurrentPath)
		if err == nil && got.Equal(asset.Digest) {
			rep.Passed++
			if !asset.Verified {
				if err := v.store.SetAssetVerified(ctx, asset.Digest, true); err != nil {
					return rep, services.Wrap(services.ErrTransient, "verifying", "record verification", "Failed to record verification", err)
				}
			}
			continue
		}

		rep.Failed++
		reason := "digest mismatch"
		if err != nil {
			reason = err.Error()
		}
		logger.Error("archived asset failed audit",
			logging.String(logging.FieldDigest, asset.Digest.Short()),
			logging.String("archive_path", asset.CurrentPath),
			logging.String("reason", reason),
			logging.String(logging.FieldEventType, "verification_failed"),
		)
		if err := v.store.FlagAsset(ctx, asset.Digest, catalog.FlagVerificationFailed); err != nil {
			return rep, services.Wrap(services.ErrTransient, "verifying", "flag asset", "Failed to flag asset", err)
		}
	}

	logger.Info("verification sweep completed",
		logging.Int("checked", rep.Checked),
		logging.Int("passed", rep.Passed),
		logging.Int("failed", rep.Failed),
		logging.Int("skipped", rep.Skipped),
	)
	return rep, nil
}
