package inventory

import (
	"context"
	"sync"

	"github.com/obmertz/stocksync/pkg/clients/shopify"
)

// fakeClient implements shopify.Client in memory and records every
// adjustment it is asked to make.
type fakeClient struct {
	mu sync.Mutex

	item      *shopify.InventoryItemNode
	findErr   error
	adjustRes *shopify.AdjustResult
	adjustErr error

	findCalls []string
	adjusts   []shopify.AdjustInput
}

func (f *fakeClient) FindInventoryItemBySKU(_ context.Context, sku, _ string) (*shopify.InventoryItemNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findCalls = append(f.findCalls, sku)
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.item, nil
}

func (f *fakeClient) AdjustQuantities(_ context.Context, input shopify.AdjustInput) (*shopify.AdjustResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adjusts = append(f.adjusts, input)
	if f.adjustErr != nil {
		return nil, f.adjustErr
	}
	if f.adjustRes != nil {
		return f.adjustRes, nil
	}
	return &shopify.AdjustResult{}, nil
}

func (f *fakeClient) Shop(context.Context) (*shopify.Shop, error) {
	return &shopify.Shop{Name: "fake"}, nil
}

func (f *fakeClient) adjustCalls() []shopify.AdjustInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]shopify.AdjustInput, len(f.adjusts))
	copy(out, f.adjusts)
	return out
}

// inventoryNode builds a resolvable item with the given variant SKU and level.
func inventoryNode(sku string, level *shopify.InventoryLevel) *shopify.InventoryItemNode {
	return &shopify.InventoryItemNode{
		ID: "gid://shopify/InventoryItem/100",
		Variant: &shopify.Variant{
			ID:  "gid://shopify/ProductVariant/200",
			SKU: sku,
			Product: shopify.VariantProduct{
				ID:    "gid://shopify/Product/300",
				Title: "Test Product",
			},
			InventoryItem: shopify.InventoryItem{
				ID:             "gid://shopify/InventoryItem/100",
				InventoryLevel: level,
			},
		},
	}
}

// levelWith builds an inventory level holding the given named buckets.
func levelWith(quantities map[string]int) *shopify.InventoryLevel {
	level := &shopify.InventoryLevel{
		ID:       "gid://shopify/InventoryLevel/400",
		Location: shopify.LevelLocation{ID: "gid://shopify/Location/500", Name: "Main Warehouse"},
	}
	for name, qty := range quantities {
		level.Quantities = append(level.Quantities, shopify.Quantity{Name: name, Quantity: qty})
	}
	return level
}
