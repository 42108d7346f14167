package organizer

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"sitevault/internal/catalog"
	"sitevault/internal/classify"
	"sitevault/internal/config"
	"sitevault/internal/extractor"
	"sitevault/internal/logging"
	"sitevault/internal/report"
	"sitevault/internal/services"
	"sitevault/internal/stage"
)

// Organizer classifies the batch's staged assets by hardware category.
type Organizer struct {
	cfg       *config.Config
	store     *catalog.Store
	logger    *slog.Logger
	report    *report.Report
	extractor extractor.Service
	rules     *classify.Table
}

// New constructs the organizer stage handler using default dependencies.
func New(cfg *config.Config, store *catalog.Store, logger *slog.Logger, rep *report.Report) (*Organizer, error) {
	rules, err := classify.LoadTable(cfg.Rules.Path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "organizing", "load rules", "Failed to load hardware rules", err)
	}
	svc, err := extractor.NewExifTool(cfg.Extractor.Binary, cfg.Extractor.TimeoutSeconds)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "organizing", "build extractor", "Invalid extractor configuration", err)
	}
	return NewWithDependencies(cfg, store, logger, rep, svc, rules), nil
}

// NewWithDependencies allows injecting collaborators (used in tests).
func NewWithDependencies(cfg *config.Config, store *catalog.Store, logger *slog.Logger, rep *report.Report, svc extractor.Service, rules *classify.Table) *Organizer {
	return &Organizer{
		cfg:       cfg,
		store:     store,
		logger:    logging.WithComponent(logger, "organizer"),
		report:    rep,
		extractor: svc,
		rules:     rules,
	}
}

// Name implements stage.Handler.
func (o *Organizer) Name() string { return "organizer" }

// Execute classifies every unclassified asset in the batch.
func (o *Organizer) Execute(ctx context.Context, batch catalog.Batch) error {
	ctx = services.WithStage(ctx, "organizing")
	ctx = services.WithLocation(ctx, batch.LocationID)
	logger := logging.WithContext(ctx, o.logger)

	assets, err := o.store.AssetsInBatch(ctx, batch)
	if err != nil {
		return services.Wrap(services.ErrTransient, "organizing", "list batch", "Failed to list batch assets", err)
	}
	pending := assets[:0]
	for _, asset := range assets {
		if !asset.Classified {
			pending = append(pending, asset)
		}
	}
	if len(pending) == 0 {
		logger.Debug("no assets awaiting classification")
		return nil
	}
	logger.Info("classifying assets", logging.Int("count", len(pending)))

	return stage.ForEach(ctx, o.cfg.Ingest.Workers, pending, func(ctx context.Context, asset *catalog.Asset) error {
		return o.classifyAsset(ctx, asset)
	})
}

func (o *Organizer) classifyAsset(ctx context.Context, asset *catalog.Asset) error {
	ctx = services.WithDigest(ctx, asset.Digest.Short())
	logger := logging.WithContext(ctx, o.logger)

	result, err := o.extractor.Extract(ctx, asset.CurrentPath)
	if err != nil {
		// A per-file timeout or tool failure is a recoverable skip; batch
		// cancellation is not.
		if ctx.Err() != nil && !services.IsRecoverableSkip(err) {
			return ctx.Err()
		}
		o.report.AddClassificationFailed()
		logger.Warn("metadata extraction failed, using fallback category",
			logging.Error(err),
			logging.String(logging.FieldEventType, "extraction_failed"),
			logging.String(logging.FieldErrorHint, "check the extractor binary and the asset file"),
		)
		if err := o.store.SetAssetClassification(ctx, asset.Digest, catalog.CategoryOther, "", false); err != nil {
			return services.Wrap(services.ErrTransient, "organizing", "record classification", "Failed to record fallback classification", err)
		}
		return nil
	}

	category := o.rules.Classify(result.Fields.Make(), result.Fields.Model())
	if err := o.store.SetAssetClassification(ctx, asset.Digest, category, string(result.RawJSON()), true); err != nil {
		return services.Wrap(services.ErrTransient, "organizing", "record classification", "Failed to record classification", err)
	}
	logger.Info("classified asset",
		logging.String("category", category),
		logging.String("make", result.Fields.Make()),
		logging.String("model", result.Fields.Model()),
	)
	return nil
}

// HealthCheck verifies the extractor binary and rule table are usable.
func (o *Organizer) HealthCheck(ctx context.Context) stage.Health {
	const name = "organizer"
	if o.rules == nil || o.rules.Len() == 0 {
		return stage.Unhealthy(name, "hardware rule table is empty")
	}
	// The binary check only applies to the exec-backed extractor.
	if _, ok := o.extractor.(*extractor.ExifTool); ok {
		binary := strings.TrimSpace(o.cfg.Extractor.Binary)
		if binary == "" {
			return stage.Unhealthy(name, "extractor binary not configured")
		}
		if _, err := exec.LookPath(binary); err != nil {
			return stage.Unhealthy(name, fmt.Sprintf("extractor binary unavailable: %v", err))
		}
	}
	return stage.Healthy(name)
}
