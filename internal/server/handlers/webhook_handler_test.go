package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/obmertz/stocksync/internal/config"
	"github.com/obmertz/stocksync/internal/domain/models"
	"github.com/obmertz/stocksync/internal/service/webhook"
)

// spyOrderService keeps the real domain matching and HMAC verification but
// records processed orders instead of touching storage.
type spyOrderService struct {
	*webhook.Service
	mu        sync.Mutex
	processed []models.OrderWebhook
}

func (s *spyOrderService) ProcessOrder(_ context.Context, _ config.StoreConfig, order models.OrderWebhook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed = append(s.processed, order)
}

func (s *spyOrderService) processedOrders() []models.OrderWebhook {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.OrderWebhook, len(s.processed))
	copy(out, s.processed)
	return out
}

func webhookStores() []config.StoreConfig {
	return []config.StoreConfig{
		{Name: "store-one", Domain: "store-one.myshopify.com", WebhookSecret: "secret-one"},
		{Name: "store-two", Domain: "store-two.myshopify.com", WebhookSecret: "secret-two"},
	}
}

func newWebhookRig(t *testing.T) (*gin.Engine, *spyOrderService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	spy := &spyOrderService{Service: webhook.NewService(webhookStores(), nil, nil, nil)}
	handler := NewWebhookHandler(spy, nil)

	r := gin.New()
	r.POST("/webhook/orders", handler.OrderCreated)
	return r, spy
}

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func deliver(r *gin.Engine, body []byte, domain, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook/orders", bytes.NewReader(body))
	req.Header.Set("X-Shopify-Shop-Domain", domain)
	req.Header.Set("X-Shopify-Hmac-Sha256", signature)
	req.Header.Set("X-Shopify-Topic", "orders/create")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestOrderCreated_ValidDelivery(t *testing.T) {
	r, spy := newWebhookRig(t)

	body := []byte(`{"id":1001,"line_items":[{"sku":"SS-NOG","quantity":5}]}`)
	rec := deliver(r, body, "store-one.myshopify.com", signBody("secret-one", body))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "webhook received")

	require.Eventually(t, func() bool {
		return len(spy.processedOrders()) == 1
	}, time.Second, 10*time.Millisecond)

	orders := spy.processedOrders()
	require.Len(t, orders[0].LineItems, 1)
	require.Equal(t, "SS-NOG", orders[0].LineItems[0].SKU)
	require.Equal(t, 5, orders[0].LineItems[0].Quantity)
}

func TestOrderCreated_TamperedBodyRejected(t *testing.T) {
	r, spy := newWebhookRig(t)

	body := []byte(`{"id":1001,"line_items":[{"sku":"SS-NOG","quantity":5}]}`)
	signature := signBody("secret-one", body)

	tampered := append([]byte(nil), body...)
	tampered[len(tampered)-3] = '9'

	rec := deliver(r, tampered, "store-one.myshopify.com", signature)

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid signature")
	require.Empty(t, spy.processedOrders(), "a rejected delivery must cause no processing")
}

func TestOrderCreated_UnknownShopRejected(t *testing.T) {
	r, spy := newWebhookRig(t)

	body := []byte(`{"id":1001,"line_items":[]}`)
	rec := deliver(r, body, "imposter.myshopify.com", signBody("secret-one", body))

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "unauthorized shop")
	require.Empty(t, spy.processedOrders())
}

func TestOrderCreated_SignedGarbageIsBadRequest(t *testing.T) {
	r, spy := newWebhookRig(t)

	body := []byte(`not json at all`)
	rec := deliver(r, body, "store-one.myshopify.com", signBody("secret-one", body))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, spy.processedOrders())
}
