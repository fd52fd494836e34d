package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"

	"go.uber.org/zap"

	"github.com/obmertz/stocksync/internal/config"
	"github.com/obmertz/stocksync/internal/domain/models"
	"github.com/obmertz/stocksync/internal/repository/mongodb"
)

// ProductStore is the slice of the persistence layer the decrement path needs.
type ProductStore interface {
	FindBySKU(ctx context.Context, sku string) (*models.Product, error)
	UpdateOnHand(ctx context.Context, id string, onHand int) error
}

// Resyncer pushes a product's corrected quantity back to every store.
type Resyncer interface {
	SyncProductEverywhere(ctx context.Context, product models.Product) []models.SyncResult
}

// Service authenticates inbound order webhooks and applies their line items
// to the authoritative inventory. Nothing is parsed or mutated until the
// signature gate has passed.
type Service struct {
	stores   []config.StoreConfig
	products ProductStore
	resyncer Resyncer
	logger   *zap.Logger
}

// NewService wires a new webhook service instance.
func NewService(stores []config.StoreConfig, products ProductStore, resyncer Resyncer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		stores:   stores,
		products: products,
		resyncer: resyncer,
		logger:   logger,
	}
}

// StoreForDomain matches the claimed shop domain against the configured
// stores. An unrecognized domain means the notification is rejected outright.
func (s *Service) StoreForDomain(domain string) (config.StoreConfig, bool) {
	if domain == "" {
		return config.StoreConfig{}, false
	}
	for _, store := range s.stores {
		if store.Domain == domain {
			return store, true
		}
	}
	return config.StoreConfig{}, false
}

// VerifySignature recomputes the base64 HMAC-SHA256 over the exact raw
// request bytes and compares it to the supplied header in constant time.
func (s *Service) VerifySignature(store config.StoreConfig, rawBody []byte, signature string) bool {
	if store.WebhookSecret == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(store.WebhookSecret))
	mac.Write(rawBody)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

// ProcessOrder decrements local stock per line item and pushes the corrected
// quantity back to every store. It runs after the HTTP response has been
// sent: Shopify enforces a short delivery deadline, and two outbound
// adjustment round trips do not fit inside it. A missing local product is
// logged and skipped; the remaining line items still apply.
func (s *Service) ProcessOrder(ctx context.Context, store config.StoreConfig, order models.OrderWebhook) {
	for _, item := range order.LineItems {
		if item.SKU == "" {
			continue
		}

		product, err := s.products.FindBySKU(ctx, item.SKU)
		if err != nil {
			if errors.Is(err, mongodb.ErrProductNotFound) {
				s.logger.Warn("ordered sku has no local product",
					zap.String("sku", item.SKU),
					zap.String("store", store.Name))
			} else {
				s.logger.Error("failed to load product for order line",
					zap.String("sku", item.SKU),
					zap.Error(err))
			}
			continue
		}

		newOnHand := product.OnHand - item.Quantity
		if newOnHand < 0 {
			newOnHand = 0
		}

		if err := s.products.UpdateOnHand(ctx, product.ID, newOnHand); err != nil {
			s.logger.Error("failed to persist decrement",
				zap.String("sku", item.SKU),
				zap.Int("new_on_hand", newOnHand),
				zap.Error(err))
			continue
		}

		s.logger.Info("order line applied",
			zap.String("sku", item.SKU),
			zap.String("store", store.Name),
			zap.Int("ordered", item.Quantity),
			zap.Int("previous_on_hand", product.OnHand),
			zap.Int("new_on_hand", newOnHand))

		product.OnHand = newOnHand
		for _, result := range s.resyncer.SyncProductEverywhere(ctx, *product) {
			if !result.Success {
				s.logger.Warn("post-order resync failed",
					zap.String("sku", result.SKU),
					zap.String("store", result.Store),
					zap.String("error", result.Error))
			}
		}
	}
}
