package handlers

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/obmertz/stocksync/internal/domain/models"
	"github.com/obmertz/stocksync/internal/repository/mongodb"
)

const headerCronToken = "X-Cron-Token"

// Syncer runs a batch reconciliation over a set of products.
type Syncer interface {
	SyncBatch(ctx context.Context, products []models.Product) models.SyncReport
}

// FullSyncRunner executes the full-catalog reconciliation.
type FullSyncRunner interface {
	RunFullSync(ctx context.Context) (models.SyncReport, error)
}

// ProductSource loads products for on-demand syncs.
type ProductSource interface {
	FindBySKU(ctx context.Context, sku string) (*models.Product, error)
	ListSyncable(ctx context.Context) ([]models.Product, error)
}

// SyncHandler exposes the on-demand and scheduled sync entrypoints.
type SyncHandler struct {
	syncer     Syncer
	runner     FullSyncRunner
	products   ProductSource
	cronSecret string
	logger     *zap.Logger
}

// NewSyncHandler constructs the HTTP handler adapter.
func NewSyncHandler(syncer Syncer, runner FullSyncRunner, products ProductSource, cronSecret string, logger *zap.Logger) *SyncHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncHandler{
		syncer:     syncer,
		runner:     runner,
		products:   products,
		cronSecret: cronSecret,
		logger:     logger,
	}
}

type syncRequest struct {
	SKUs []string `json:"skus"`
}

// Sync runs an on-demand reconciliation. An empty SKU list means the whole
// syncable catalog. SKUs with no local product come back as failed results
// rather than aborting the batch.
func (h *SyncHandler) Sync(c *gin.Context) {
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid sync request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx := c.Request.Context()

	var (
		products []models.Product
		missing  []models.SyncResult
	)

	if len(req.SKUs) == 0 {
		all, err := h.products.ListSyncable(ctx)
		if err != nil {
			h.logger.Error("failed to list products", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load products"})
			return
		}
		products = all
	} else {
		for _, sku := range req.SKUs {
			product, err := h.products.FindBySKU(ctx, sku)
			if err != nil {
				if errors.Is(err, mongodb.ErrProductNotFound) {
					missing = append(missing, models.SyncResult{
						SKU:   sku,
						Error: "product not found locally",
					})
					continue
				}
				h.logger.Error("failed to load product", zap.String("sku", sku), zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load products"})
				return
			}
			products = append(products, *product)
		}
	}

	if len(products) == 0 && len(missing) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "no products found to sync",
		})
		return
	}

	report := h.syncer.SyncBatch(ctx, products)
	report.Results = append(report.Results, missing...)
	report.Failed += len(missing)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"runId":   report.RunID,
		"summary": report.Summary(),
		"results": report.Results,
	})
}

// CronSync is the entrypoint the external scheduler hits. It is guarded by a
// shared-secret header compared for exact equality; a mismatch performs no
// work at all.
func (h *SyncHandler) CronSync(c *gin.Context) {
	token := c.GetHeader(headerCronToken)
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.cronSecret)) != 1 {
		h.logger.Warn("unauthorized cron attempt", zap.String("client_ip", c.ClientIP()))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	report, err := h.runner.RunFullSync(c.Request.Context())
	if err != nil {
		h.logger.Error("cron sync failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sync failed", "message": err.Error()})
		return
	}

	if len(report.Results) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "no products found to sync",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"runId":   report.RunID,
		"summary": report.Summary(),
		"results": report.Results,
	})
}
