package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/obmertz/stocksync/internal/config"
	"github.com/obmertz/stocksync/internal/domain/models"
)

const (
	runSummaryRange = "SyncRuns!A:F"
	failureRange    = "SyncFailures!A:D"
)

// SheetAuditLog persists an append-only sync history to a Google Sheet: one
// row per batch run plus one row per failed product/store attempt. It is the
// durable record behind the ephemeral SyncReport.
type SheetAuditLog struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewSheetAuditLog builds a Google Sheets backed audit log instance.
func NewSheetAuditLog(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*SheetAuditLog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &SheetAuditLog{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// AppendRunSummary records one batch run: its summary row, then one row per
// failed result so misbehaving SKUs can be traced without log archaeology.
func (l *SheetAuditLog) AppendRunSummary(ctx context.Context, report models.SyncReport) error {
	summary := []interface{}{
		report.RunID,
		report.StartedAt.Format("2006-01-02 15:04:05"),
		report.FinishedAt.Format("2006-01-02 15:04:05"),
		report.Succeeded,
		report.Failed,
		len(report.Results),
	}

	if err := l.appendRows(ctx, runSummaryRange, [][]interface{}{summary}); err != nil {
		return fmt.Errorf("append run summary: %w", err)
	}

	var failures [][]interface{}
	for _, result := range report.Results {
		if result.Success {
			continue
		}
		failures = append(failures, []interface{}{report.RunID, result.SKU, result.Store, result.Error})
	}

	if len(failures) > 0 {
		if err := l.appendRows(ctx, failureRange, failures); err != nil {
			return fmt.Errorf("append failure rows: %w", err)
		}
	}

	l.logger.Debug("sync run recorded",
		zap.String("run_id", report.RunID),
		zap.Int("failures", len(failures)))
	return nil
}

func (l *SheetAuditLog) appendRows(ctx context.Context, sheetRange string, values [][]interface{}) error {
	payload := &sheetsapi.ValueRange{Values: values}

	call := l.service.Spreadsheets.Values.Append(l.spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append rows into range %s: %w", sheetRange, err)
	}
	return nil
}
