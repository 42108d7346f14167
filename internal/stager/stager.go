package stager

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

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

// Stager creates the import batch: it stages source files and writes pending
// catalog records.
type Stager struct {
	cfg    *config.Config
	store  *catalog.Store
	logger *slog.Logger
	report *report.Report
}

// New constructs the stager.
func New(cfg *config.Config, store *catalog.Store, logger *slog.Logger, rep *report.Report) *Stager {
	return &Stager{
		cfg:    cfg,
		store:  store,
		logger: logging.WithComponent(logger, "stager"),
		report: rep,
	}
}

// Run ingests every regular file under sourceDir for the named location and
// returns the batch scoping downstream stages. The location record is created
// on first use; reuse is keyed by exact name match.
func (s *Stager) Run(ctx context.Context, sourceDir, locationName string, meta catalog.LocationMeta) (catalog.Batch, error) {
	ctx = services.WithStage(ctx, "staging")
	logger := logging.WithContext(ctx, s.logger)

	info, err := os.Stat(sourceDir)
	if err != nil {
		return catalog.Batch{}, services.Wrap(services.ErrValidation, "staging", "stat source", "Source directory unavailable", err)
	}
	if !info.IsDir() {
		return catalog.Batch{}, services.Wrap(services.ErrValidation, "staging", "stat source", fmt.Sprintf("%s is not a directory", sourceDir), nil)
	}

	loc, created, err := s.store.InsertLocationIfAbsent(ctx, locationName, meta)
	if err != nil {
		return catalog.Batch{}, services.Wrap(services.ErrTransient, "staging", "resolve location", "Failed to create or reuse location record", err)
	}
	if created {
		logger.Info("created location",
			logging.String(logging.FieldLocationID, loc.ID),
			logging.String("name", loc.Name),
		)
	}
	s.report.SetLocation(loc.ID, loc.Name)

	batch := catalog.Batch{LocationID: loc.ID, Since: time.Now().UTC()}
	// An interrupted run leaves assets staged but never committed or
	// verified. Widen the batch window back to the oldest of them so the
	// downstream stages resume that work instead of stranding it.
	if oldest, ok, err := s.store.OldestUnfinishedAssetTime(ctx, loc.ID); err != nil {
		return catalog.Batch{}, services.Wrap(services.ErrTransient, "staging", "resolve batch window", "Failed to look up unfinished assets", err)
	} else if ok && oldest.Before(batch.Since) {
		batch.Since = oldest
	}
	ctx = services.WithLocation(ctx, loc.ID)

	if err := archivist.EnsureDir(archivist.StagingDir(s.cfg.Paths.StagingDir, loc)); err != nil {
		return catalog.Batch{}, services.Wrap(services.ErrConfiguration, "staging", "ensure staging dir", "Failed to create staging directory", err)
	}

	files, err := listRegularFiles(sourceDir)
	if err != nil {
		return catalog.Batch{}, services.Wrap(services.ErrTransient, "staging", "scan source", "Failed to scan source directory", err)
	}
	logger.Info("scanning source directory",
		logging.String("source", sourceDir),
		logging.Int("files", len(files)),
	)

	err = stage.ForEach(ctx, s.cfg.Ingest.Workers, files, func(ctx context.Context, path string) error {
		s.stageFile(ctx, loc, path)
		return nil
	})
	if err != nil {
		return batch, err
	}

	snapshot := s.report.Snapshot()
	logger.Info("staging completed",
		logging.Int("accepted", snapshot.Accepted),
		logging.Int("duplicates", snapshot.DuplicateSkipped),
		logging.Int("unsupported", snapshot.UnsupportedSkipped),
		logging.Int("unreadable", snapshot.UnreadableSkipped),
	)
	return batch, nil
}

// stageFile processes one source file. All failures are recoverable skips.
func (s *Stager) stageFile(ctx context.Context, loc *catalog.Location, path string) {
	logger := logging.WithContext(ctx, s.logger)

	ext := strings.ToLower(filepath.Ext(path))
	kind, supported := s.kindForExtension(ext)
	if !supported {
		s.report.AddUnsupported()
		logger.Debug("skipping unsupported extension", logging.String("path", path))
		return
	}

	digest, err := hashing.HashFile(path)
	if err != nil {
		s.report.AddUnreadable()
		logger.Warn("skipping unreadable source file",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "source_unreadable"),
		)
		return
	}

	// Dedup check, staging copy, and record insert run under the location
	// lock so concurrent workers staging identical bytes cannot interleave.
	err = s.store.WithLocationLock(loc.ID, func() error {
		exists, err := s.store.HasDigest(ctx, digest)
		if err != nil {
			return err
		}
		if exists {
			s.report.AddDuplicate()
			logger.Debug("skipping duplicate",
				logging.String("path", path),
				logging.String(logging.FieldDigest, digest.Short()),
			)
			return nil
		}

		stagingPath := archivist.StagingPath(s.cfg.Paths.StagingDir, loc, digest, ext)
		if err := s.placeInStaging(path, stagingPath, digest); err != nil {
			s.report.AddUnreadable()
			logger.Warn("failed to stage source file",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldEventType, "staging_copy_failed"),
				logging.String(logging.FieldErrorHint, "check staging_dir free space and permissions"),
			)
			return nil
		}

		asset := &catalog.Asset{
			Digest:       digest,
			LocationID:   loc.ID,
			Phase:        catalog.PhaseStaged,
			CurrentPath:  stagingPath,
			OriginalPath: path,
			Kind:         kind,
		}
		if err := s.store.InsertAsset(ctx, asset); err != nil {
			if errors.Is(err, catalog.ErrDuplicateDigest) {
				s.report.AddDuplicate()
				return nil
			}
			return err
		}
		s.report.AddAccepted()
		logger.Info("staged asset",
			logging.String(logging.FieldDigest, digest.Short()),
			logging.String("kind", string(kind)),
			logging.String("staging_path", stagingPath),
		)
		return nil
	})
	if err != nil {
		logger.Error("catalog write failed during staging",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check catalog database access"),
		)
		s.report.AddUnreadable()
	}
}

// placeInStaging materializes the staging copy. A pre-existing staging file
// with the right digest is reused so re-running an interrupted batch does not
// duplicate work.
func (s *Stager) placeInStaging(src, dst string, digest hashing.Digest) error {
	if existing, err := hashing.HashFile(dst); err == nil {
		if existing.Equal(digest) {
			return nil
		}
		if err := os.Remove(dst); err != nil {
			return fmt.Errorf("replace stale staging file: %w", err)
		}
	}
	_, err := fileutil.LinkOrCopy(src, dst, s.cfg.Ingest.Hardlink)
	return err
}

func (s *Stager) kindForExtension(ext string) (catalog.MediaKind, bool) {
	ext = strings.TrimPrefix(ext, ".")
	for _, candidate := range s.cfg.Ingest.ImageExtensions {
		if ext == candidate {
			return catalog.KindImage, true
		}
	}
	for _, candidate := range s.cfg.Ingest.VideoExtensions {
		if ext == candidate {
			return catalog.KindVideo, true
		}
	}
	for _, candidate := range s.cfg.Ingest.DocumentExtensions {
		if ext == candidate {
			return catalog.KindDocument, true
		}
	}
	return "", false
}

// HealthCheck verifies staging prerequisites.
func (s *Stager) HealthCheck(ctx context.Context) stage.Health {
	const name = "stager"
	if s.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(s.cfg.Paths.StagingDir) == "" {
		return stage.Unhealthy(name, "staging directory not configured")
	}
	if s.store == nil {
		return stage.Unhealthy(name, "catalog unavailable")
	}
	return stage.Healthy(name)
}

func listRegularFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
