package invoice

import (
	"fmt"
	"strings"
)

// DuplicateRule detects repeated invoices within a single batch. Identity is
// the (invoice_number, seller_name, invoice_date) triple, compared after
// trimming and lowercasing each part. Invoices missing any part of the key
// are skipped. The first occurrence of a key, in input order, is exempt;
// every later occurrence is flagged. Detection is batch-scoped only, no
// state survives across runs.
type DuplicateRule struct{}

// NewDuplicateRule creates the batch-scope duplicate detector.
func NewDuplicateRule() *DuplicateRule { return &DuplicateRule{} }

func (r *DuplicateRule) ID() string         { return "no_duplicate_invoices" }
func (r *DuplicateRule) Category() Category { return CategoryAnomaly }
func (r *DuplicateRule) Severity() Severity { return SeverityError }

// EvaluateBatch returns violations keyed by batch index. Indices without
// findings are absent from the map.
func (r *DuplicateRule) EvaluateBatch(batch []Invoice) map[int][]Violation {
	out := make(map[int][]Violation)
	firstSeen := make(map[string]int)

	for i := range batch {
		inv := &batch[i]
		if missing(inv.InvoiceNumber) || missing(inv.SellerName) || missing(inv.InvoiceDate) {
			continue
		}
		key := duplicateKey(inv)
		first, seen := firstSeen[key]
		if !seen {
			firstSeen[key] = i
			continue
		}
		out[i] = append(out[i], Violation{
			RuleID:   r.ID(),
			Category: CategoryAnomaly,
			Message: fmt.Sprintf("duplicate invoice detected: %s (first occurrence at index %d)",
				strings.TrimSpace(inv.InvoiceNumber), first),
			Severity: SeverityError,
		})
	}
	return out
}

func duplicateKey(inv *Invoice) string {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	return norm(inv.InvoiceNumber) + "|" + norm(inv.SellerName) + "|" + norm(inv.InvoiceDate)
}
