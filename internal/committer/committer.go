package committer

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"sitevault/internal/archivist"
	"sitevault/internal/catalog"
	"sitevault/internal/config"
	"sitevault/internal/fileutil"
	"sitevault/internal/hashing"
	"sitevault/internal/logging"
	"sitevault/internal/report"
	"sitevault/internal/services"
	"sitevault/internal/stage"
)

// Committer places classified staged assets into the archive tree.
type Committer struct {
	cfg    *config.Config
	store  *catalog.Store
	logger *slog.Logger
	report *report.Report
}

// New constructs the committer stage handler.
func New(cfg *config.Config, store *catalog.Store, logger *slog.Logger, rep *report.Report) *Committer {
	return &Committer{
		cfg:    cfg,
		store:  store,
		logger: logging.WithComponent(logger, "committer"),
		report: rep,
	}
}

// Name implements stage.Handler.
func (c *Committer) Name() string { return "committer" }

// Execute commits every classified, still-staged asset in the batch.
func (c *Committer) Execute(ctx context.Context, batch catalog.Batch) error {
	ctx = services.WithStage(ctx, "committing")
	ctx = services.WithLocation(ctx, batch.LocationID)
	logger := logging.WithContext(ctx, c.logger)

	loc, err := c.store.LocationByID(ctx, batch.LocationID)
	if err != nil {
		return services.Wrap(services.ErrTransient, "committing", "load location", "Failed to load location record", err)
	}
	assets, err := c.store.AssetsInBatch(ctx, batch)
	if err != nil {
		return services.Wrap(services.ErrTransient, "committing", "list batch", "Failed to list batch assets", err)
	}
	pending := assets[:0]
	for _, asset := range assets {
		if asset.Classified && asset.Phase == catalog.PhaseStaged && !asset.Flagged() {
			pending = append(pending, asset)
		}
	}
	if len(pending) == 0 {
		logger.Debug("no assets awaiting commit")
		return nil
	}
	logger.Info("committing assets", logging.Int("count", len(pending)))

	return stage.ForEach(ctx, c.cfg.Ingest.Workers, pending, func(ctx context.Context, asset *catalog.Asset) error {
		err := c.commitAsset(ctx, loc, asset)
		// Integrity failures flag the asset and continue the batch; anything
		// else aborts the stage.
		if err != nil && services.IsIntegrityFatal(err) {
			return c.flagLost(ctx, asset, err)
		}
		return err
	})
}

func (c *Committer) commitAsset(ctx context.Context, loc *catalog.Location, asset *catalog.Asset) error {
	ctx = services.WithDigest(ctx, asset.Digest.Short())
	logger := logging.WithContext(ctx, c.logger)

	ext := assetExtension(asset)
	target, err := archivist.Resolve(c.cfg.Paths.ArchiveRoot, loc, asset.Kind, asset.Category(), asset.Digest, ext)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "committing", "resolve target", "Failed to create archive directory", err)
	}
	dst := target.Path()

	// A previous interrupted run may have left the archive file behind.
	if existing, err := hashing.HashFile(dst); err == nil {
		if existing.Equal(asset.Digest) {
			return c.markArchived(ctx, asset, dst, target.Filename)
		}
		if err := os.Remove(dst); err != nil {
			return services.Wrap(services.ErrTransient, "committing", "replace partial file", "Failed to remove mismatched archive file", err)
		}
		logger.Warn("replaced mismatched archive file from earlier run",
			logging.String("path", dst),
			logging.String(logging.FieldEventType, "partial_commit_replaced"),
		)
	}

	if _, err := os.Stat(asset.CurrentPath); err != nil {
		// Staging copy is gone and the archive holds nothing usable.
		return services.Wrap(services.ErrIntegrity, "committing", "place file", "Asset bytes missing from both staging and archive", err)
	}

	linked, err := fileutil.LinkOrCopy(asset.CurrentPath, dst, c.cfg.Ingest.Hardlink)
	if err != nil {
		return services.Wrap(services.ErrTransient, "committing", "place file", "Failed to place asset in archive", err)
	}
	logger.Info("committed asset",
		logging.String("archive_path", dst),
		logging.Bool("hardlinked", linked),
	)
	return c.markArchived(ctx, asset, dst, target.Filename)
}

// flagLost records an integrity-fatal asset in the report and catalog. The
// flag is the durable record; losing it would silently drop the asset.
func (c *Committer) flagLost(ctx context.Context, asset *catalog.Asset, cause error) error {
	ctx = services.WithDigest(ctx, asset.Digest.Short())
	c.report.AddLost(string(asset.Digest))
	logging.WithContext(ctx, c.logger).Error("asset bytes are gone from staging and archive",
		logging.String("staging_path", asset.CurrentPath),
		logging.Error(cause),
		logging.String(logging.FieldEventType, "asset_lost"),
		logging.String(logging.FieldErrorHint, "restore the source file and re-import"),
	)
	if err := c.store.FlagAsset(ctx, asset.Digest, catalog.FlagLost); err != nil {
		return services.Wrap(services.ErrTransient, "committing", "flag asset", "Failed to flag lost asset", err)
	}
	return nil
}

func (c *Committer) markArchived(ctx context.Context, asset *catalog.Asset, dst, filename string) error {
	if err := c.store.SetAssetArchived(ctx, asset.Digest, dst, filename); err != nil {
		return services.Wrap(services.ErrTransient, "committing", "record commit", "Failed to record archive placement", err)
	}
	return nil
}

// HealthCheck verifies the archive root is writable.
func (c *Committer) HealthCheck(ctx context.Context) stage.Health {
	const name = "committer"
	root := strings.TrimSpace(c.cfg.Paths.ArchiveRoot)
	if root == "" {
		return stage.Unhealthy(name, "archive root not configured")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return stage.Unhealthy(name, "archive root is not writable")
	}
	return stage.Healthy(name)
}

// assetExtension picks the canonical extension for an asset, preferring the
// staging copy's name and falling back to the original source name.
func assetExtension(asset *catalog.Asset) string {
	if ext := filepath.Ext(asset.CurrentPath); ext != "" {
		return ext
	}
	return filepath.Ext(asset.OriginalPath)
}
