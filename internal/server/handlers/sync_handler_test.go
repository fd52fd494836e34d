package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/obmertz/stocksync/internal/domain/models"
	"github.com/obmertz/stocksync/internal/repository/mongodb"
)

type fakeSyncer struct {
	batches [][]models.Product
}

func (f *fakeSyncer) SyncBatch(_ context.Context, products []models.Product) models.SyncReport {
	f.batches = append(f.batches, products)
	report := models.SyncReport{RunID: "run-1"}
	for _, product := range products {
		report.Results = append(report.Results, models.SyncResult{
			SKU: product.SKU, Store: "store-one", Success: true, NewQuantity: product.OnHand,
		})
		report.Succeeded++
	}
	return report
}

type fakeRunner struct {
	report models.SyncReport
	err    error
	calls  int
}

func (f *fakeRunner) RunFullSync(context.Context) (models.SyncReport, error) {
	f.calls++
	return f.report, f.err
}

type fakeSource struct {
	products map[string]models.Product
}

func (f *fakeSource) FindBySKU(_ context.Context, sku string) (*models.Product, error) {
	product, ok := f.products[sku]
	if !ok {
		return nil, fmt.Errorf("%w: sku %q", mongodb.ErrProductNotFound, sku)
	}
	return &product, nil
}

func (f *fakeSource) ListSyncable(context.Context) ([]models.Product, error) {
	out := make([]models.Product, 0, len(f.products))
	for _, product := range f.products {
		out = append(out, product)
	}
	return out, nil
}

func newSyncRig(syncer *fakeSyncer, runner *fakeRunner, source *fakeSource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewSyncHandler(syncer, runner, source, "cron-secret", nil)

	r := gin.New()
	r.POST("/api/sync", handler.Sync)
	r.POST("/api/cron/sync", handler.CronSync)
	return r
}

func postJSON(r *gin.Engine, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCronSync_RejectsBadToken(t *testing.T) {
	runner := &fakeRunner{}
	r := newSyncRig(&fakeSyncer{}, runner, &fakeSource{})

	rec := postJSON(r, "/api/cron/sync", "", map[string]string{"X-Cron-Token": "wrong"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Zero(t, runner.calls, "no work may happen on an unauthorized trigger")

	rec = postJSON(r, "/api/cron/sync", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Zero(t, runner.calls)
}

func TestCronSync_RunsFullSync(t *testing.T) {
	runner := &fakeRunner{report: models.SyncReport{
		RunID:     "run-9",
		Succeeded: 3,
		Failed:    1,
		Results:   make([]models.SyncResult, 4),
	}}
	r := newSyncRig(&fakeSyncer{}, runner, &fakeSource{})

	rec := postJSON(r, "/api/cron/sync", "", map[string]string{"X-Cron-Token": "cron-secret"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, runner.calls)

	var resp struct {
		Success bool           `json:"success"`
		RunID   string         `json:"runId"`
		Summary map[string]int `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, "run-9", resp.RunID)
	require.Equal(t, map[string]int{"succeeded": 3, "failed": 1}, resp.Summary)
}

func TestCronSync_EmptyCatalog(t *testing.T) {
	runner := &fakeRunner{report: models.SyncReport{RunID: "run-0"}}
	r := newSyncRig(&fakeSyncer{}, runner, &fakeSource{})

	rec := postJSON(r, "/api/cron/sync", "", map[string]string{"X-Cron-Token": "cron-secret"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "no products found to sync")
}

func TestSync_SelectedSKUs(t *testing.T) {
	syncer := &fakeSyncer{}
	source := &fakeSource{products: map[string]models.Product{
		"SS-NOG": {ID: "p1", SKU: "SS-NOG", OnHand: 42},
	}}
	r := newSyncRig(syncer, &fakeRunner{}, source)

	rec := postJSON(r, "/api/sync", `{"skus":["SS-NOG","GHOST"]}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, syncer.batches, 1)
	require.Len(t, syncer.batches[0], 1, "only locally known products reach the batch")

	var resp struct {
		Success bool                `json:"success"`
		Summary map[string]int      `json:"summary"`
		Results []models.SyncResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, map[string]int{"succeeded": 1, "failed": 1}, resp.Summary)
	require.Len(t, resp.Results, 2)

	var ghost *models.SyncResult
	for i := range resp.Results {
		if resp.Results[i].SKU == "GHOST" {
			ghost = &resp.Results[i]
		}
	}
	require.NotNil(t, ghost)
	require.False(t, ghost.Success)
	require.Equal(t, "product not found locally", ghost.Error)
}

func TestSync_EmptyBodyMeansWholeCatalog(t *testing.T) {
	syncer := &fakeSyncer{}
	source := &fakeSource{products: map[string]models.Product{
		"A": {ID: "a", SKU: "A", OnHand: 1},
		"B": {ID: "b", SKU: "B", OnHand: 2},
	}}
	r := newSyncRig(syncer, &fakeRunner{}, source)

	rec := postJSON(r, "/api/sync", `{}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, syncer.batches, 1)
	require.Len(t, syncer.batches[0], 2)
}

func TestSync_NothingToSync(t *testing.T) {
	r := newSyncRig(&fakeSyncer{}, &fakeRunner{}, &fakeSource{})

	rec := postJSON(r, "/api/sync", `{}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "no products found to sync")
}
