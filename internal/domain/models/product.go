package models

import "time"

// Product is the authoritative warehouse record for a single SKU. The local
// OnHand figure is the source of truth; remote storefront quantities are
// reconciled against it, never the other way around.
type Product struct {
	ID          string               `bson:"_id,omitempty" json:"id"`
	SKU         string               `bson:"sku" json:"sku"`
	ProductName string               `bson:"productName" json:"productName"`
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	OnHand      int                  `bson:"onHand" json:"onHand"`
	Status      ProductStatus        `bson:"status" json:"status"`
	Location    Location             `bson:"location" json:"location"`
	Location2   *SecondaryLocation   `bson:"location2,omitempty" json:"location2,omitempty"`
	StoreLinks  map[string]StoreLink `bson:"storeLinks,omitempty" json:"storeLinks,omitempty"`
	LastUpdated time.Time            `bson:"lastUpdated" json:"lastUpdated"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
}

// ProductStatus marks whether a product participates in day-to-day operations.
type ProductStatus string

const (
	StatusActive   ProductStatus = "active"
	StatusInactive ProductStatus = "inactive"
)

// Location describes a physical warehouse position (zone/aisle/shelf/bin).
type Location struct {
	Loc1 string `bson:"loc1" json:"loc1"`
	Loc2 string `bson:"loc2,omitempty" json:"loc2,omitempty"`
	Loc3 string `bson:"loc3,omitempty" json:"loc3,omitempty"`
	Loc4 string `bson:"loc4,omitempty" json:"loc4,omitempty"`
}

// SecondaryLocation is an optional overflow position with its own count.
// Its OnHand is tracked independently and is never pushed to the storefronts.
type SecondaryLocation struct {
	Location `bson:",inline"`
	OnHand   int `bson:"onHand" json:"onHand"`
}

// StoreLink holds the remote Shopify identifiers for one storefront. All
// fields may be empty: identifiers are resolved lazily by SKU lookup, and the
// resolver re-verifies the SKU rather than trusting anything cached here.
type StoreLink struct {
	ProductID       string `bson:"productId,omitempty" json:"productId,omitempty"`
	VariantID       string `bson:"variantId,omitempty" json:"variantId,omitempty"`
	InventoryItemID string `bson:"inventoryItemId,omitempty" json:"inventoryItemId,omitempty"`
	LocationID      string `bson:"locationId,omitempty" json:"locationId,omitempty"`
}

// LinkFor returns the StoreLink for the named store, if one is present.
func (p *Product) LinkFor(storeName string) (StoreLink, bool) {
	if p.StoreLinks == nil {
		return StoreLink{}, false
	}
	link, ok := p.StoreLinks[storeName]
	return link, ok
}
