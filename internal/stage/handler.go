// Package stage defines the contract the pipeline runner needs from each
// stage, plus the bounded worker pool stages use for per-file fan-out.
package stage

import (
	"context"

	"sitevault/internal/catalog"
)

// Handler describes one batch-scoped pipeline stage. Execute re-derives its
// work list from the catalog so re-running a partially completed batch
// resumes where it stopped. Stage-local per-file failures are counted in the
// batch report, not returned; Execute errors mean the stage infrastructure
// itself failed.
type Handler interface {
	Name() string
	Execute(ctx context.Context, batch catalog.Batch) error
	HealthCheck(ctx context.Context) Health
}
