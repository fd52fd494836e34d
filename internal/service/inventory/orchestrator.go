package inventory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/obmertz/stocksync/internal/config"
	"github.com/obmertz/stocksync/internal/domain/models"
)

// Orchestrator fans products out to every configured storefront. Each store
// is attempted unconditionally; one store failing never stops the other.
// Updates to the same SKU are serialized through a keyed lock so a scheduled
// batch and a webhook-triggered resync cannot interleave their
// read-then-write cycles for that SKU.
type Orchestrator struct {
	engine      *Engine
	stores      []config.StoreConfig
	concurrency int
	logger      *zap.Logger

	mu       sync.Mutex
	skuLocks map[string]*sync.Mutex
}

// NewOrchestrator wires a new orchestrator over the configured stores.
func NewOrchestrator(engine *Engine, stores []config.StoreConfig, concurrency int, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Orchestrator{
		engine:      engine,
		stores:      stores,
		concurrency: concurrency,
		logger:      logger,
		skuLocks:    make(map[string]*sync.Mutex),
	}
}

// SyncProductEverywhere reconciles one product against every store and
// returns the per-store results in one flat list.
func (o *Orchestrator) SyncProductEverywhere(ctx context.Context, product models.Product) []models.SyncResult {
	lock := o.lockFor(product.SKU)
	lock.Lock()
	defer lock.Unlock()

	return o.syncAllStores(ctx, product)
}

// SyncBatch reconciles every product against every store with bounded
// concurrency and aggregates the outcomes into a report.
func (o *Orchestrator) SyncBatch(ctx context.Context, products []models.Product) models.SyncReport {
	report := models.SyncReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}

	var resultsMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for _, product := range products {
		product := product
		g.Go(func() error {
			lock := o.lockFor(product.SKU)
			lock.Lock()
			results := o.syncAllStores(gctx, product)
			lock.Unlock()

			resultsMu.Lock()
			report.Results = append(report.Results, results...)
			resultsMu.Unlock()
			return nil
		})
	}

	// Workers never return errors; failures are data inside the results.
	_ = g.Wait()

	for _, result := range report.Results {
		if result.Success {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}
	report.FinishedAt = time.Now().UTC()

	o.logger.Info("batch sync finished",
		zap.String("run_id", report.RunID),
		zap.Int("products", len(products)),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
		zap.Duration("took", report.FinishedAt.Sub(report.StartedAt)))

	return report
}

func (o *Orchestrator) syncAllStores(ctx context.Context, product models.Product) []models.SyncResult {
	results := make([]models.SyncResult, 0, len(o.stores))
	for _, store := range o.stores {
		results = append(results, o.engine.SyncOne(ctx, product, store))
	}
	return results
}

// lockFor returns the per-SKU mutex, creating it on first use. Locks are
// retained for the process lifetime; the set is bounded by the catalog size.
func (o *Orchestrator) lockFor(sku string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()

	lock, ok := o.skuLocks[sku]
	if !ok {
		lock = &sync.Mutex{}
		o.skuLocks[sku] = lock
	}
	return lock
}
