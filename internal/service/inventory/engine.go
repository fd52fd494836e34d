package inventory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/obmertz/stocksync/internal/config"
	"github.com/obmertz/stocksync/internal/domain/models"
	"github.com/obmertz/stocksync/pkg/clients/shopify"
)

// Engine reconciles one product against one storefront. It is the failure
// isolation boundary of the sync core: every error raised below it is
// converted into a failed SyncResult, never returned to the caller.
type Engine struct {
	connect shopify.Factory
	logger  *zap.Logger
}

// NewEngine wires a new engine instance. The factory is invoked once per sync
// attempt so each attempt runs with fresh credentials.
func NewEngine(connect shopify.Factory, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{connect: connect, logger: logger}
}

// SyncOne pushes the product's authoritative on-hand quantity to the given
// store. The remote adjustment primitive is relative, so the local figure is
// first converted into a delta against the remote quantity; issuing an
// absolute set here would be wrong.
func (e *Engine) SyncOne(ctx context.Context, product models.Product, store config.StoreConfig) models.SyncResult {
	result := models.SyncResult{SKU: product.SKU, Store: store.Name}

	locationID := store.LocationID
	if link, ok := product.LinkFor(store.Name); ok && link.LocationID != "" {
		locationID = link.LocationID
	}
	if locationID == "" {
		result.Error = fmt.Sprintf("no location ID configured for store: %s", store.Name)
		return result
	}

	client, err := e.connect(store)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	remote, err := resolveBySKU(ctx, client, product.SKU, locationID)
	if err != nil {
		e.logger.Warn("sku resolution failed",
			zap.String("sku", product.SKU),
			zap.String("store", store.Name),
			zap.Error(err))
		result.Error = err.Error()
		return result
	}

	delta := product.OnHand - remote.CurrentQuantity

	e.logger.Debug("issuing inventory adjustment",
		zap.String("sku", product.SKU),
		zap.String("store", store.Name),
		zap.Int("local_on_hand", product.OnHand),
		zap.Int("remote_on_hand", remote.CurrentQuantity),
		zap.Int("delta", delta))

	adjusted, err := client.AdjustQuantities(ctx, shopify.AdjustInput{
		InventoryItemID: remote.InventoryItemID,
		LocationID:      remote.LocationID,
		Delta:           delta,
		Reason:          "correction",
	})
	if err != nil {
		result.Error = err.Error()
		return result
	}

	if len(adjusted.UserErrors) > 0 {
		result.Error = adjusted.UserErrors[0].Message
		return result
	}

	result.Success = true
	result.PreviousQuantity = remote.CurrentQuantity
	result.NewQuantity = product.OnHand
	result.Message = fmt.Sprintf("updated inventory from %d to %d", remote.CurrentQuantity, product.OnHand)

	e.logger.Info("inventory synced",
		zap.String("sku", product.SKU),
		zap.String("store", store.Name),
		zap.Int("previous", result.PreviousQuantity),
		zap.Int("new", result.NewQuantity))

	return result
}
