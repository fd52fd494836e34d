package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/obmertz/stocksync/internal/config"
	"github.com/obmertz/stocksync/internal/domain/models"
)

// Shopify webhook delivery headers.
const (
	headerHmac       = "X-Shopify-Hmac-Sha256"
	headerShopDomain = "X-Shopify-Shop-Domain"
	headerTopic      = "X-Shopify-Topic"
)

// processTimeout bounds the detached order processing, which includes one
// persistence write and two outbound adjustment round trips per line item.
const processTimeout = 2 * time.Minute

// OrderService is the webhook-facing surface of the order decrement service.
type OrderService interface {
	StoreForDomain(domain string) (config.StoreConfig, bool)
	VerifySignature(store config.StoreConfig, rawBody []byte, signature string) bool
	ProcessOrder(ctx context.Context, store config.StoreConfig, order models.OrderWebhook)
}

// WebhookHandler handles inbound Shopify webhook deliveries.
type WebhookHandler struct {
	svc    OrderService
	logger *zap.Logger
}

// NewWebhookHandler constructs the HTTP handler adapter.
func NewWebhookHandler(svc OrderService, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{svc: svc, logger: logger}
}

// OrderCreated ingests orders/create deliveries. The body is read raw ahead
// of any parsing because the HMAC covers the exact bytes on the wire. Shopify
// expects an acknowledgment within a few seconds, so the handler responds as
// soon as the delivery is authenticated and processes the order detached from
// the request.
func (h *WebhookHandler) OrderCreated(c *gin.Context) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Error("failed to read webhook body", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read body"})
		return
	}

	shopDomain := c.GetHeader(headerShopDomain)
	topic := c.GetHeader(headerTopic)

	store, ok := h.svc.StoreForDomain(shopDomain)
	if !ok {
		h.logger.Warn("webhook from unrecognized shop", zap.String("shop", shopDomain))
		c.JSON(http.StatusForbidden, gin.H{"error": "unauthorized shop"})
		return
	}

	if !h.svc.VerifySignature(store, rawBody, c.GetHeader(headerHmac)) {
		h.logger.Warn("webhook signature mismatch",
			zap.String("shop", shopDomain),
			zap.String("topic", topic))
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid signature"})
		return
	}

	var order models.OrderWebhook
	if err := json.Unmarshal(rawBody, &order); err != nil {
		h.logger.Warn("invalid order payload", zap.String("shop", shopDomain), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	h.logger.Info("webhook received",
		zap.String("shop", shopDomain),
		zap.String("topic", topic),
		zap.String("store", store.Name),
		zap.Int("line_items", len(order.LineItems)))

	c.JSON(http.StatusOK, gin.H{"message": "webhook received"})

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
		defer cancel()
		h.svc.ProcessOrder(ctx, store, order)
	}()
}
