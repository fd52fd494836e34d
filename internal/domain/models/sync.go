package models

import "time"

// SyncResult captures the outcome of one product/store reconciliation
// attempt. It is produced fresh on every attempt and returned to the caller;
// durable history lives in the audit log, not here.
type SyncResult struct {
	SKU              string `json:"sku"`
	Store            string `json:"store"`
	Success          bool   `json:"success"`
	PreviousQuantity int    `json:"previousQuantity,omitempty"`
	NewQuantity      int    `json:"newQuantity,omitempty"`
	Message          string `json:"message,omitempty"`
	Error            string `json:"error,omitempty"`
}

// SyncReport aggregates the results of a batch run.
type SyncReport struct {
	RunID      string       `json:"runId"`
	Succeeded  int          `json:"succeeded"`
	Failed     int          `json:"failed"`
	Results    []SyncResult `json:"results"`
	StartedAt  time.Time    `json:"startedAt"`
	FinishedAt time.Time    `json:"finishedAt"`
}

// Summary returns the compact shape embedded in API responses.
func (r SyncReport) Summary() map[string]int {
	return map[string]int{"succeeded": r.Succeeded, "failed": r.Failed}
}
