package dto

import (
	"time"

	"github.com/ValeenMar/tovaltech-sub001/internal/merge"

	"github.com/shopspring/decimal"
)

// ProviderRun summarizes one adapter's fetch.
type ProviderRun struct {
	Name     string `json:"name"`
	Rows     int    `json:"rows"`
	Error    string `json:"error,omitempty"`
	Duration string `json:"duration"`
}

// SKUConflict records a sku offered by more than one provider and which one
// ended up in the batch.
type SKUConflict struct {
	SKU     string   `json:"sku"`
	Offered []string `json:"offered_by"`
	Winner  string   `json:"winner"`
}

// SyncReport is produced by every run, persisted to Redis and optionally
// emailed when a provider failed.
type SyncReport struct {
	RunID           string            `json:"run_id"`
	Trigger         string            `json:"trigger"`
	StartedAt       time.Time         `json:"started_at"`
	FinishedAt      time.Time         `json:"finished_at"`
	DolarRate       decimal.Decimal   `json:"dolar_rate"`
	Providers       []ProviderRun     `json:"providers"`
	ProviderErrors  map[string]string `json:"provider_errors"`
	Conflicts       []SKUConflict     `json:"conflicts"`
	Merge           merge.Result      `json:"merge"`
	CategoriesAdded int               `json:"categories_added"`
	Error           string            `json:"error,omitempty"`
}

// Failed reports whether any provider failed.
func (r *SyncReport) Failed() bool { return len(r.ProviderErrors) > 0 }

// SyncEnqueueResponse is returned when an admin requests a run.
type SyncEnqueueResponse struct {
	JobID   string `json:"job_id"`
	Trigger string `json:"trigger"`
}

type MarkupInvalidateResponse struct {
	Invalidated bool `json:"invalidated"`
}
