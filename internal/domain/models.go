package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ValidationRun is one batch of invoice documents moving through the
// extract-then-validate pipeline. Report holds the engine's full JSON report
// once the run completes.
type ValidationRun struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	Source       RunSource       `db:"source" json:"source"`
	Status       RunStatus       `db:"status" json:"status"`
	FileCount    int             `db:"file_count" json:"file_count"`
	TotalCount   int             `db:"total_count" json:"total_count"`
	ValidCount   int             `db:"valid_count" json:"valid_count"`
	InvalidCount int             `db:"invalid_count" json:"invalid_count"`
	Report       json.RawMessage `db:"report" json:"report,omitempty"`
	Error        string          `db:"error" json:"error,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// RunDocument is a single uploaded document within a run, together with the
// invoice extracted from it and that invoice's validation outcome. Position
// is the zero-based upload order and fixes the invoice's index in the batch.
type RunDocument struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	RunID          uuid.UUID       `db:"run_id" json:"run_id"`
	Position       int             `db:"position" json:"position"`
	FileName       string          `db:"file_name" json:"file_name"`
	ContentType    string          `db:"content_type" json:"content_type"`
	SizeBytes      int64           `db:"size_bytes" json:"size_bytes"`
	StorageKey     string          `db:"storage_key" json:"storage_key"`
	ParserProvider string          `db:"parser_provider" json:"parser_provider,omitempty"`
	Invoice        json.RawMessage `db:"invoice" json:"invoice,omitempty"`
	InvoiceRef     string          `db:"invoice_ref" json:"invoice_ref,omitempty"`
	IsValid        bool            `db:"is_valid" json:"is_valid"`
	ViolationCount int             `db:"violation_count" json:"violation_count"`
	Violations     json.RawMessage `db:"violations" json:"violations,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// RunStats aggregates validation outcomes across stored runs.
type RunStats struct {
	TotalRuns       int `db:"total_runs" json:"total_runs"`
	QueuedRuns      int `db:"queued_runs" json:"queued_runs"`
	ProcessingRuns  int `db:"processing_runs" json:"processing_runs"`
	CompletedRuns   int `db:"completed_runs" json:"completed_runs"`
	FailedRuns      int `db:"failed_runs" json:"failed_runs"`
	TotalInvoices   int `db:"total_invoices" json:"total_invoices"`
	ValidInvoices   int `db:"valid_invoices" json:"valid_invoices"`
	InvalidInvoices int `db:"invalid_invoices" json:"invalid_invoices"`
}

// RuleFrequency is one aggregate row of the cross-run error breakdown.
type RuleFrequency struct {
	RuleID string `db:"rule_id" json:"rule_id"`
	Count  int    `db:"count" json:"count"`
}
