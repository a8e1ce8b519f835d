package port

import (
	"context"

	"invoiceqc/internal/validator/invoice"
)

// ParseInput carries the data needed for invoice extraction.
type ParseInput struct {
	FileBytes   []byte
	ContentType string
	FileName    string
}

// ParseOutput contains the structured result from an extraction provider.
// Confidence maps field paths (e.g. "invoice_number", "line_items") to
// scores between 0.0 and 1.0; deterministic providers report 1.0.
type ParseOutput struct {
	Invoice    invoice.Invoice
	Confidence map[string]float64
	Provider   string
}

// DocumentParser abstracts invoice extraction from a raw document.
type DocumentParser interface {
	Parse(ctx context.Context, input ParseInput) (*ParseOutput, error)
}
