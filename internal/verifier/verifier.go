package verifier

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"sitevault/internal/archivist"
	"sitevault/internal/catalog"
	"sitevault/internal/config"
	"sitevault/internal/hashing"
	"sitevault/internal/logging"
	"sitevault/internal/report"
	"sitevault/internal/services"
	"sitevault/internal/stage"
)

// Verifier is the final pipeline stage: it proves the archive copy of each
// batch asset matches the catalogued digest before the staging copy is
// released.
type Verifier struct {
	cfg    *config.Config
	store  *catalog.Store
	logger *slog.Logger
	report *report.Report
}

// New constructs the verifier stage handler.
func New(cfg *config.Config, store *catalog.Store, logger *slog.Logger, rep *report.Report) *Verifier {
	return &Verifier{
		cfg:    cfg,
		store:  store,
		logger: logging.WithComponent(logger, "verifier"),
		report: rep,
	}
}

// Name implements stage.Handler.
func (v *Verifier) Name() string { return "verifier" }

// Execute verifies every archived, unverified, unflagged asset in the batch.
func (v *Verifier) Execute(ctx context.Context, batch catalog.Batch) error {
	ctx = services.WithStage(ctx, "verifying")
	ctx = services.WithLocation(ctx, batch.LocationID)
	logger := logging.WithContext(ctx, v.logger)

	loc, err := v.store.LocationByID(ctx, batch.LocationID)
	if err != nil {
		return services.Wrap(services.ErrTransient, "verifying", "load location", "Failed to load location record", err)
	}
	assets, err := v.store.AssetsInBatch(ctx, batch)
	if err != nil {
		return services.Wrap(services.ErrTransient, "verifying", "list batch", "Failed to list batch assets", err)
	}
	pending := assets[:0]
	for _, asset := range assets {
		if asset.Phase == catalog.PhaseArchived && !asset.Verified && !asset.Flagged() {
			pending = append(pending, asset)
		}
	}
	if len(pending) == 0 {
		logger.Debug("no assets awaiting verification")
		return nil
	}
	logger.Info("verifying assets", logging.Int("count", len(pending)))

	return stage.ForEach(ctx, v.cfg.Ingest.Workers, pending, func(ctx context.Context, asset *catalog.Asset) error {
		return v.verifyAsset(ctx, loc, asset)
	})
}

func (v *Verifier) verifyAsset(ctx context.Context, loc *catalog.Location, asset *catalog.Asset) error {
	ctx = services.WithDigest(ctx, asset.Digest.Short())
	logger := logging.WithContext(ctx, v.logger)

	got, err := hashing.HashFile(asset.CurrentPath)
	if err != nil || !got.Equal(asset.Digest) {
		reason := "digest mismatch"
		if err != nil {
			reason = err.Error()
		}
		v.report.AddVerificationFailed(string(asset.Digest))
		logger.Error("archive copy failed verification",
			logging.String("archive_path", asset.CurrentPath),
			logging.String("reason", reason),
			logging.String(logging.FieldEventType, "verification_failed"),
			logging.String(logging.FieldErrorHint, "the staging copy is retained; inspect the archive filesystem"),
		)
		if err := v.store.FlagAsset(ctx, asset.Digest, catalog.FlagVerificationFailed); err != nil {
			return services.Wrap(services.ErrTransient, "verifying", "flag asset", "Failed to flag asset", err)
		}
		return nil
	}

	if err := v.store.SetAssetVerified(ctx, asset.Digest, true); err != nil {
		return services.Wrap(services.ErrTransient, "verifying", "record verification", "Failed to record verification", err)
	}
	v.releaseStagingCopy(loc, asset, logger)
	logger.Info("verified asset", logging.String("archive_path", asset.CurrentPath))
	return nil
}

// releaseStagingCopy removes the now-redundant staging file. Failure to
// remove it is only logged: a leftover staging copy is recleaned later and
// never endangers the archive.
func (v *Verifier) releaseStagingCopy(loc *catalog.Location, asset *catalog.Asset, logger *slog.Logger) {
	ext := filepath.Ext(asset.CurrentPath)
	stagingPath := archivist.StagingPath(v.cfg.Paths.StagingDir, loc, asset.Digest, ext)
	if err := os.Remove(stagingPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("failed to remove staging copy",
			logging.String("staging_path", stagingPath),
			logging.Error(err),
		)
	}
}

// HealthCheck verifies the verifier's prerequisites.
func (v *Verifier) HealthCheck(ctx context.Context) stage.Health {
	const name = "verifier"
	if v.store == nil {
		return stage.Unhealthy(name, "catalog unavailable")
	}
	return stage.Healthy(name)
}
