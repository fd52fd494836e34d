package models

// OrderWebhook mirrors the subset of Shopify's orders/create payload the
// decrement path consumes. Everything else in the payload is ignored.
type OrderWebhook struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	LineItems []OrderLineItem `json:"line_items"`
}

// OrderLineItem is a single ordered SKU with its quantity.
type OrderLineItem struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
	Title    string `json:"title,omitempty"`
}
