package inventory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/obmertz/stocksync/internal/domain/models"
)

// ProductLister is the slice of the persistence layer the full-sync path
// needs.
type ProductLister interface {
	ListSyncable(ctx context.Context) ([]models.Product, error)
}

// AuditSink records finished batch runs durably. Optional.
type AuditSink interface {
	AppendRunSummary(ctx context.Context, report models.SyncReport) error
}

// Runner executes a full-catalog reconciliation: every syncable product
// against every store. Both the in-process scheduler and the protected cron
// endpoint go through here so the two triggers behave identically.
type Runner struct {
	products     ProductLister
	orchestrator *Orchestrator
	audit        AuditSink
	logger       *zap.Logger
}

// NewRunner wires a full-sync runner. The audit sink may be nil.
func NewRunner(products ProductLister, orchestrator *Orchestrator, audit AuditSink, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		products:     products,
		orchestrator: orchestrator,
		audit:        audit,
		logger:       logger,
	}
}

// RunFullSync loads the syncable catalog, reconciles it against every store,
// and records the run. An error is returned only when the catalog cannot be
// loaded; per-product failures live inside the report.
func (r *Runner) RunFullSync(ctx context.Context) (models.SyncReport, error) {
	products, err := r.products.ListSyncable(ctx)
	if err != nil {
		return models.SyncReport{}, fmt.Errorf("load syncable products: %w", err)
	}

	r.logger.Info("starting full sync", zap.Int("products", len(products)))

	report := r.orchestrator.SyncBatch(ctx, products)

	if r.audit != nil {
		if err := r.audit.AppendRunSummary(ctx, report); err != nil {
			// History is best effort; the sync itself already happened.
			r.logger.Error("failed to record sync run", zap.String("run_id", report.RunID), zap.Error(err))
		}
	}

	return report, nil
}
