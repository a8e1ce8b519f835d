package invoice_test

import (
	"testing"

	"invoiceqc/internal/validator/invoice"
)

// validInvoice returns an *invoice.Invoice that passes every built-in rule:
// net 100.00 + tax 19.00 = gross 119.00, one line item 4 x 25.00 = 100.00.
func validInvoice() *invoice.Invoice {
	return &invoice.Invoice{
		InvoiceNumber: "RE-2024-001",
		BuyerName:     "Beispiel GmbH",
		BuyerAddress:  "Albertus-Magnus-Str. 8, 44624 Matternfeld",
		SellerName:    "ABC Corporation",
		SellerAddress: "Industriestr. 3, 12345 Koeln",
		InvoiceDate:   "2024-05-22",
		DueDate:       "2024-06-21",
		Currency:      "EUR",
		NetTotal:      invoice.Dec("100.00"),
		TaxRate:       invoice.Dec("19"),
		TaxAmount:     invoice.Dec("19.00"),
		GrossTotal:    invoice.Dec("119.00"),
		LineItems: []invoice.LineItem{
			{
				Position:      1,
				Description:   "USB-Maus",
				ArticleNumber: "000252944C",
				Quantity:      invoice.Dec("4"),
				Unit:          "VE",
				UnitPrice:     invoice.Dec("25.00"),
				LineTotal:     invoice.Dec("100.00"),
			},
		},
	}
}

// findRule returns the built-in rule with the given ID, built with default
// thresholds.
func findRule(t *testing.T, id string) *invoice.BuiltinRule {
	t.Helper()
	for _, r := range invoice.AllBuiltinRules(invoice.Config{}) {
		if r.ID() == id {
			return r
		}
	}
	t.Fatalf("builtin rule %q not registered", id)
	return nil
}

// fieldPaths collects the Field of each violation, "" for nil.
func fieldPaths(violations []invoice.Violation) []string {
	out := make([]string, 0, len(violations))
	for _, v := range violations {
		if v.Field == nil {
			out = append(out, "")
			continue
		}
		out = append(out, *v.Field)
	}
	return out
}
