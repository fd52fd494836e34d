package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/obmertz/stocksync/internal/config"
)

// Client exposes the Admin GraphQL operations the sync core uses.
type Client interface {
	FindInventoryItemBySKU(ctx context.Context, sku, locationID string) (*InventoryItemNode, error)
	AdjustQuantities(ctx context.Context, input AdjustInput) (*AdjustResult, error)
	Shop(ctx context.Context) (*Shop, error)
}

// Factory builds an authenticated client for one storefront. Connect is the
// production implementation; tests substitute their own.
type Factory func(store config.StoreConfig) (Client, error)

// APIClient is a resty-backed implementation of Client, bound to one store.
type APIClient struct {
	httpClient *resty.Client
	store      string
	appID      string
}

// Connect builds a fresh client for the given storefront. A new instance is
// constructed per call so rotated credentials are always picked up; it fails
// fast when the store is missing its domain or access token.
func Connect(store config.StoreConfig, sync config.SyncConfig) (*APIClient, error) {
	if store.Domain == "" {
		return nil, fmt.Errorf("store %q: missing shop domain", store.Name)
	}
	if store.AccessToken == "" {
		return nil, fmt.Errorf("store %q: missing access token", store.Name)
	}

	domain := strings.TrimSuffix(store.Domain, "/")
	if !strings.Contains(domain, "://") {
		domain = "https://" + domain
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(fmt.Sprintf("%s/admin/api/%s", domain, sync.APIVersion)).
		SetHeader("X-Shopify-Access-Token", store.AccessToken).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &APIClient{
		httpClient: restyClient,
		store:      store.Name,
		appID:      sync.AppID,
	}, nil
}

const findInventoryItemQuery = `
query findInventoryItemBySku($query: String!, $locationId: ID!) {
  inventoryItems(first: 1, query: $query) {
    nodes {
      id
      variant {
        id
        sku
        product {
          id
          title
        }
        inventoryItem {
          id
          inventoryLevel(locationId: $locationId) {
            id
            quantities(names: ["available", "on_hand", "committed", "incoming"]) {
              name
              quantity
            }
            location {
              id
              name
            }
          }
        }
      }
    }
  }
}`

// FindInventoryItemBySKU runs the server-side SKU text search and returns the
// first matching inventory item, or nil when the store has no match. Matching
// semantics are the search endpoint's own; callers verify the variant SKU.
func (c *APIClient) FindInventoryItemBySKU(ctx context.Context, sku, locationID string) (*InventoryItemNode, error) {
	var data struct {
		InventoryItems struct {
			Nodes []InventoryItemNode `json:"nodes"`
		} `json:"inventoryItems"`
	}

	err := c.request(ctx, findInventoryItemQuery, map[string]any{
		"query":      fmt.Sprintf("sku:%s", sku),
		"locationId": locationID,
	}, &data)
	if err != nil {
		return nil, fmt.Errorf("find inventory item by sku %q: %w", sku, err)
	}

	if len(data.InventoryItems.Nodes) == 0 {
		return nil, nil
	}
	return &data.InventoryItems.Nodes[0], nil
}

const adjustQuantitiesMutation = `
mutation inventoryAdjustQuantities($input: InventoryAdjustQuantitiesInput!) {
  inventoryAdjustQuantities(input: $input) {
    inventoryAdjustmentGroup {
      createdAt
      reason
      changes {
        name
        delta
        quantityAfterChange
      }
    }
    userErrors {
      field
      message
    }
  }
}`

// AdjustQuantities applies a relative delta to the "available" bucket of one
// inventory level. The primitive is relative on purpose: absolute writes would
// clobber concurrent platform-side movements.
func (c *APIClient) AdjustQuantities(ctx context.Context, input AdjustInput) (*AdjustResult, error) {
	reason := input.Reason
	if reason == "" {
		reason = "correction"
	}

	variables := map[string]any{
		"input": map[string]any{
			"changes": []map[string]any{{
				"inventoryItemId": input.InventoryItemID,
				"locationId":      input.LocationID,
				"delta":           input.Delta,
			}},
			"name":                 "available",
			"reason":               reason,
			"referenceDocumentUri": fmt.Sprintf("gid://shopify/App/%s", c.appID),
		},
	}

	var data struct {
		InventoryAdjustQuantities AdjustResult `json:"inventoryAdjustQuantities"`
	}

	if err := c.request(ctx, adjustQuantitiesMutation, variables, &data); err != nil {
		return nil, fmt.Errorf("adjust quantities: %w", err)
	}

	return &data.InventoryAdjustQuantities, nil
}

// Shop fetches the shop identity, used as a connectivity and credential probe.
func (c *APIClient) Shop(ctx context.Context) (*Shop, error) {
	var data struct {
		Shop Shop `json:"shop"`
	}

	if err := c.request(ctx, `query { shop { name myshopifyDomain } }`, nil, &data); err != nil {
		return nil, fmt.Errorf("fetch shop: %w", err)
	}

	return &data.Shop, nil
}

// request executes one GraphQL document against the Admin API and decodes the
// data payload into out. Every network call in this package funnels through
// here; no retries or backoff are applied.
func (c *APIClient) request(ctx context.Context, query string, variables map[string]any, out any) error {
	body := map[string]any{"query": query}
	if len(variables) > 0 {
		body["variables"] = variables
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(body).
		Post("/graphql.json")
	if err != nil {
		return fmt.Errorf("shopify request (%s): %w", c.store, err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("shopify api error (%s): status=%d body=%s", c.store, resp.StatusCode(), resp.String())
	}

	envelope := new(graphQLEnvelope)
	if err := json.Unmarshal(resp.Body(), envelope); err != nil {
		return fmt.Errorf("decode shopify response (%s): %w", c.store, err)
	}

	if len(envelope.Errors) > 0 {
		messages := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			messages = append(messages, e.Message)
		}
		return fmt.Errorf("shopify graphql error (%s): %s", c.store, strings.Join(messages, "; "))
	}

	if out == nil || len(envelope.Data) == 0 {
		return nil
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode shopify response (%s): %w", c.store, err)
	}

	return nil
}
