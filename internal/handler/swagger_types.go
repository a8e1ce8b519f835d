package handler

import (
	"invoiceqc/internal/domain"
)

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Response Types ---

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"database not reachable"`
}

// RunWithDocuments represents a run together with its per-document results.
type RunWithDocuments struct {
	Run       domain.ValidationRun `json:"run"`
	Documents []domain.RunDocument `json:"documents"`
}

// StatsResponse represents the aggregate statistics response.
type StatsResponse struct {
	Stats     domain.RunStats        `json:"stats"`
	TopErrors []domain.RuleFrequency `json:"top_errors"`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}

// --- Validation Report Schema (for documentation) ---

// ValidationReport represents the engine's full report document.
type ValidationReport struct {
	Results []ValidationResult `json:"results"`
	Summary ReportSummary      `json:"summary"`
}

// ValidationResult represents one invoice's outcome within a report.
type ValidationResult struct {
	InvoiceRef string          `json:"invoice_ref" example:"INV-2024-001234"`
	IsValid    bool            `json:"is_valid" example:"false"`
	Violations []RuleViolation `json:"violations"`
}

// RuleViolation represents a single rule failure on an invoice.
type RuleViolation struct {
	RuleID   string  `json:"rule_id" example:"tax_calculation_valid"`
	Category string  `json:"category" example:"business"`
	Field    *string `json:"field" example:"gross_total"`
	Message  string  `json:"message" example:"net 1000.00 plus tax 170.00 does not equal gross 1180.00"`
	Severity string  `json:"severity" example:"error"`
}

// ReportSummary represents the aggregate section of a report.
type ReportSummary struct {
	TotalInvoices  int            `json:"total" example:"50"`
	ValidCount     int            `json:"valid" example:"42"`
	InvalidCount   int            `json:"invalid" example:"8"`
	ErrorFrequency map[string]int `json:"error_frequency"`
}
