package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"sitevault/internal/catalog"
	"sitevault/internal/classify"
	"sitevault/internal/committer"
	"sitevault/internal/config"
	"sitevault/internal/extractor"
	"sitevault/internal/logging"
	"sitevault/internal/organizer"
	"sitevault/internal/report"
	"sitevault/internal/services"
	"sitevault/internal/stage"
	"sitevault/internal/stager"
	"sitevault/internal/verifier"
)

// ImportRequest describes one import invocation.
type ImportRequest struct {
	SourceDir    string
	LocationName string
	Meta         catalog.LocationMeta
}

// Runner wires the stage handlers for import batches.
type Runner struct {
	cfg       *config.Config
	store     *catalog.Store
	logger    *slog.Logger
	lock      *flock.Flock
	extractor extractor.Service
}

// Option adjusts runner construction.
type Option func(*Runner)

// WithExtractorService overrides the metadata extractor (used in tests).
func WithExtractorService(svc extractor.Service) Option {
	return func(r *Runner) {
		r.extractor = svc
	}
}

// New constructs a pipeline runner.
func New(cfg *config.Config, store *catalog.Store, logger *slog.Logger, opts ...Option) *Runner {
	r := &Runner{
		cfg:    cfg,
		store:  store,
		logger: logging.WithComponent(logger, "pipeline"),
		lock:   flock.New(filepath.Join(cfg.Paths.DataDir, "import.lock")),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one full import batch and returns its report. The returned
// summary is valid even when err is non-nil so callers can show partial
// progress.
func (r *Runner) Run(ctx context.Context, req ImportRequest) (report.Summary, error) {
	rep := report.New("", req.LocationName, time.Now().UTC())

	ok, err := r.lock.TryLock()
	if err != nil {
		return rep.Snapshot(), fmt.Errorf("acquire import lock: %w", err)
	}
	if !ok {
		return rep.Snapshot(), errors.New("another import is already running")
	}
	defer func() {
		_ = r.lock.Unlock()
	}()

	ingest := stager.New(r.cfg, r.store, r.logger, rep)
	org, err := r.buildOrganizer(rep)
	if err != nil {
		return rep.Snapshot(), err
	}
	handlers := []stage.Handler{
		org,
		committer.New(r.cfg, r.store, r.logger, rep),
		verifier.New(r.cfg, r.store, r.logger, rep),
	}

	if err := r.checkHealth(ctx, ingest, handlers); err != nil {
		return rep.Snapshot(), err
	}

	batch, err := ingest.Run(ctx, req.SourceDir, req.LocationName, req.Meta)
	if err != nil {
		return rep.Snapshot(), err
	}

	for _, handler := range handlers {
		if err := ctx.Err(); err != nil {
			return rep.Snapshot(), err
		}
		if err := handler.Execute(ctx, batch); err != nil {
			return rep.Snapshot(), fmt.Errorf("%s stage: %w", handler.Name(), err)
		}
	}

	summary := rep.Snapshot()
	r.logger.Info("import batch finished",
		logging.String(logging.FieldLocationID, summary.LocationID),
		logging.Int("accepted", summary.Accepted),
		logging.Int("verification_failed", summary.VerificationFailed),
		logging.Int("lost", summary.Lost),
		logging.Bool("success", summary.Success()),
	)
	return summary, nil
}

func (r *Runner) buildOrganizer(rep *report.Report) (*organizer.Organizer, error) {
	if r.extractor == nil {
		return organizer.New(r.cfg, r.store, r.logger, rep)
	}
	rules, err := classify.LoadTable(r.cfg.Rules.Path)
	if err != nil {
		return nil, err
	}
	return organizer.NewWithDependencies(r.cfg, r.store, r.logger, rep, r.extractor, rules), nil
}

type healthChecker interface {
	HealthCheck(ctx context.Context) stage.Health
}

func (r *Runner) checkHealth(ctx context.Context, ingest healthChecker, handlers []stage.Handler) error {
	checkers := append([]healthChecker{ingest}, storeChecker{r.store})
	for _, handler := range handlers {
		checkers = append(checkers, handler)
	}
	for _, checker := range checkers {
		health := checker.HealthCheck(ctx)
		if !health.Ready {
			return services.Wrap(
				services.ErrConfiguration,
				"pipeline",
				"health check",
				fmt.Sprintf("%s is not ready: %s", health.Name, health.Detail),
				nil,
			)
		}
	}
	return nil
}

type storeChecker struct {
	store *catalog.Store
}

func (c storeChecker) HealthCheck(ctx context.Context) stage.Health {
	if err := c.store.CheckHealth(ctx); err != nil {
		return stage.Unhealthy("catalog", err.Error())
	}
	return stage.Healthy("catalog")
}
