package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/obmertz/stocksync/internal/config"
	"github.com/obmertz/stocksync/pkg/clients/shopify"
)

// StoreHandler exposes a connectivity probe per configured storefront.
type StoreHandler struct {
	stores  []config.StoreConfig
	connect shopify.Factory
	logger  *zap.Logger
}

// NewStoreHandler constructs the HTTP handler adapter.
func NewStoreHandler(stores []config.StoreConfig, connect shopify.Factory, logger *zap.Logger) *StoreHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StoreHandler{stores: stores, connect: connect, logger: logger}
}

// Test probes every configured store with a shop identity query, reporting
// per-store whether the stored credentials currently work.
func (h *StoreHandler) Test(c *gin.Context) {
	type probeResult struct {
		Store  string `json:"store"`
		OK     bool   `json:"ok"`
		Shop   string `json:"shop,omitempty"`
		Domain string `json:"domain,omitempty"`
		Error  string `json:"error,omitempty"`
	}

	results := make([]probeResult, 0, len(h.stores))
	allOK := true

	for _, store := range h.stores {
		probe := probeResult{Store: store.Name}

		client, err := h.connect(store)
		if err != nil {
			probe.Error = err.Error()
			allOK = false
			results = append(results, probe)
			continue
		}

		shop, err := client.Shop(c.Request.Context())
		if err != nil {
			h.logger.Warn("store probe failed", zap.String("store", store.Name), zap.Error(err))
			probe.Error = err.Error()
			allOK = false
		} else {
			probe.OK = true
			probe.Shop = shop.Name
			probe.Domain = shop.MyshopifyDomain
		}
		results = append(results, probe)
	}

	c.JSON(http.StatusOK, gin.H{"success": allOK, "stores": results})
}
