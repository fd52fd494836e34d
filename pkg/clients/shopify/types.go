package shopify

import "encoding/json"

// Typed shapes for the Admin GraphQL responses the sync core consumes.
// Optional nesting is modeled with pointers so absence is an explicit check,
// not a nil dereference.

// graphQLEnvelope is the generic {data, errors} response wrapper.
type graphQLEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

type graphQLError struct {
	Message string `json:"message"`
}

// InventoryItemNode is one node of the inventoryItems(query:"sku:...") lookup.
type InventoryItemNode struct {
	ID      string   `json:"id"`
	Variant *Variant `json:"variant"`
}

// Variant carries the SKU string we verify against, plus the inventory item
// whose level at the target location we read.
type Variant struct {
	ID            string         `json:"id"`
	SKU           string         `json:"sku"`
	Product       VariantProduct `json:"product"`
	InventoryItem InventoryItem  `json:"inventoryItem"`
}

// VariantProduct identifies the parent product of a variant.
type VariantProduct struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// InventoryItem holds the per-location inventory level, when one exists.
type InventoryItem struct {
	ID             string          `json:"id"`
	InventoryLevel *InventoryLevel `json:"inventoryLevel"`
}

// InventoryLevel is the named-bucket quantity set at one location.
type InventoryLevel struct {
	ID         string        `json:"id"`
	Quantities []Quantity    `json:"quantities"`
	Location   LevelLocation `json:"location"`
}

// Quantity is a single named inventory bucket.
type Quantity struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// LevelLocation identifies the location an inventory level belongs to.
type LevelLocation struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// QuantityByName returns the named bucket's quantity and whether it was present.
func (l *InventoryLevel) QuantityByName(name string) (int, bool) {
	for _, q := range l.Quantities {
		if q.Name == name {
			return q.Quantity, true
		}
	}
	return 0, false
}

// AdjustInput describes one relative inventory adjustment.
type AdjustInput struct {
	InventoryItemID string
	LocationID      string
	Delta           int
	Reason          string
}

// AdjustResult is the outcome of an inventoryAdjustQuantities mutation.
// UserErrors are platform-level rejections, distinct from transport failures.
type AdjustResult struct {
	Group      *AdjustmentGroup `json:"inventoryAdjustmentGroup"`
	UserErrors []UserError      `json:"userErrors"`
}

// AdjustmentGroup echoes the applied changes.
type AdjustmentGroup struct {
	CreatedAt string             `json:"createdAt"`
	Reason    string             `json:"reason"`
	Changes   []AdjustmentChange `json:"changes"`
}

// AdjustmentChange is one applied delta within an adjustment group.
type AdjustmentChange struct {
	Name                string `json:"name"`
	Delta               int    `json:"delta"`
	QuantityAfterChange int    `json:"quantityAfterChange"`
}

// UserError is a validation error reported by the platform.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// Shop identifies the storefront a token authenticates against.
type Shop struct {
	Name            string `json:"name"`
	MyshopifyDomain string `json:"myshopifyDomain"`
}
