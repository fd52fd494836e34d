package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/obmertz/stocksync/pkg/clients/shopify"
)

// Sentinel errors for the two lookup failure classes callers must tell apart:
// a SKU with no remote match versus a matched item with no level at the
// target location (a misconfigured location, not a missing product).
var (
	ErrSKUNotFound      = errors.New("no inventory item found for sku")
	ErrNoInventoryLevel = errors.New("no inventory level found for location")
)

// resolvedItem is the remote identity and state of one SKU at one location.
type resolvedItem struct {
	ProductID       string
	VariantID       string
	InventoryItemID string
	LocationID      string
	CurrentQuantity int
	Title           string
}

// resolveBySKU finds the remote inventory item for a SKU at a location and
// extracts the comparable quantity: on_hand, falling back to available,
// defaulting to 0. The variant's SKU is re-verified case-insensitively
// against the requested one, so a server-ranked near-match is rejected
// instead of silently adjusted.
func resolveBySKU(ctx context.Context, client shopify.Client, sku, locationID string) (*resolvedItem, error) {
	item, err := client.FindInventoryItemBySKU(ctx, sku, locationID)
	if err != nil {
		return nil, err
	}

	if item == nil || item.Variant == nil {
		return nil, fmt.Errorf("%w: %s", ErrSKUNotFound, sku)
	}

	variant := item.Variant
	if !strings.EqualFold(variant.SKU, sku) {
		return nil, fmt.Errorf("%w: %s (closest match %q)", ErrSKUNotFound, sku, variant.SKU)
	}

	level := variant.InventoryItem.InventoryLevel
	if level == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoInventoryLevel, locationID)
	}

	quantity, ok := level.QuantityByName("on_hand")
	if !ok {
		quantity, _ = level.QuantityByName("available")
	}

	return &resolvedItem{
		ProductID:       variant.Product.ID,
		VariantID:       variant.ID,
		InventoryItemID: variant.InventoryItem.ID,
		LocationID:      locationID,
		CurrentQuantity: quantity,
		Title:           variant.Product.Title,
	}, nil
}
