package committer

import (
	"context"
	"path/filepath"

	"sitevault/internal/archivist"
	"sitevault/internal/catalog"
	"sitevault/internal/hashing"
	"sitevault/internal/logging"
	"sitevault/internal/services"
)

// RecoveryReport summarizes one recovery sweep over a location.
type RecoveryReport struct {
	LocationID string `json:"location_id"`
	Checked    int    `json:"checked"`
	Intact     int    `json:"intact"`
	Repaired   int    `json:"repaired"`
	Lost       int    `json:"lost"`
}

// Recover walks every asset of a location and repairs catalog records whose
// current path no longer holds the asset's bytes. The asset is re-pointed at
// whichever of its archive target or staging path still matches the digest;
// if neither does it is flagged as lost.
func (c *Committer) Recover(ctx context.Context, locationID string) (RecoveryReport, error) {
	ctx = services.WithStage(ctx, "recovery")
	ctx = services.WithLocation(ctx, locationID)
	logger := logging.WithContext(ctx, c.logger)

	rep := RecoveryReport{LocationID: locationID}
	loc, err := c.store.LocationByID(ctx, locationID)
	if err != nil {
		return rep, services.Wrap(services.ErrNotFound, "recovery", "load location", "Unknown location", err)
	}
	assets, err := c.store.AssetsByLocation(ctx, locationID)
	if err != nil {
		return rep, services.Wrap(services.ErrTransient, "recovery", "list assets", "Failed to list location assets", err)
	}

	for _, asset := range assets {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		rep.Checked++
		if matchesDigest(asset.CurrentPath, asset.Digest) {
			rep.Intact++
			continue
		}

		repaired, err := c.repointAsset(ctx, loc, asset)
		if err != nil {
			return rep, err
		}
		if repaired {
			rep.Repaired++
			continue
		}

		rep.Lost++
		logger.Error("asset bytes unrecoverable",
			logging.String(logging.FieldDigest, asset.Digest.Short()),
			logging.String("last_known_path", asset.CurrentPath),
			logging.String(logging.FieldEventType, "asset_lost"),
		)
		if err := c.store.FlagAsset(ctx, asset.Digest, catalog.FlagLost); err != nil {
			return rep, services.Wrap(services.ErrTransient, "recovery", "flag asset", "Failed to flag lost asset", err)
		}
	}

	logger.Info("recovery sweep completed",
		logging.Int("checked", rep.Checked),
		logging.Int("intact", rep.Intact),
		logging.Int("repaired", rep.Repaired),
		logging.Int("lost", rep.Lost),
	)
	return rep, nil
}

// repointAsset tries the asset's two deterministic homes and fixes the
// catalog record to match whichever one holds the bytes.
func (c *Committer) repointAsset(ctx context.Context, loc *catalog.Location, asset *catalog.Asset) (bool, error) {
	logger := logging.WithContext(ctx, c.logger)
	ext := assetExtension(asset)

	if asset.Classified {
		dir := archivist.TargetDir(c.cfg.Paths.ArchiveRoot, loc, asset.Kind, asset.Category())
		name := archivist.CanonicalFilename(loc, asset.Kind, asset.Digest, ext)
		archivePath := filepath.Join(dir, name)
		if matchesDigest(archivePath, asset.Digest) {
			if err := c.store.SetAssetArchived(ctx, asset.Digest, archivePath, name); err != nil {
				return false, services.Wrap(services.ErrTransient, "recovery", "record repair", "Failed to repair archive record", err)
			}
			logger.Info("repointed asset to archive copy",
				logging.String(logging.FieldDigest, asset.Digest.Short()),
				logging.String("path", archivePath),
			)
			return true, nil
		}
	}

	stagingPath := archivist.StagingPath(c.cfg.Paths.StagingDir, loc, asset.Digest, ext)
	if matchesDigest(stagingPath, asset.Digest) {
		asset.Phase = catalog.PhaseStaged
		asset.CurrentPath = stagingPath
		asset.Verified = false
		if err := c.store.UpdateAsset(ctx, asset); err != nil {
			return false, services.Wrap(services.ErrTransient, "recovery", "record repair", "Failed to repair staging record", err)
		}
		logger.Info("repointed asset to staging copy",
			logging.String(logging.FieldDigest, asset.Digest.Short()),
			logging.String("path", stagingPath),
		)
		return true, nil
	}
	return false, nil
}

func matchesDigest(path string, digest hashing.Digest) bool {
	got, err := hashing.HashFile(path)
	if err != nil {
		return false
	}
	return got.Equal(digest)
}
