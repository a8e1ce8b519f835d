package invoice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoiceqc/internal/validator/invoice"
)

func TestLineItemsSumMatch(t *testing.T) {
	r := findRule(t, "line_items_sum_match")

	// net 100.00: allowed deviation is 0.01 * max(100, 1) = 1.00 inclusive
	t.Run("pass_exact", func(t *testing.T) {
		assert.Empty(t, r.Evaluate(validInvoice()))
	})

	t.Run("pass_just_inside_tolerance", func(t *testing.T) {
		inv := validInvoice()
		inv.LineItems[0].LineTotal = invoice.Dec("100.99")
		assert.Empty(t, r.Evaluate(inv))
	})

	t.Run("pass_exactly_at_tolerance", func(t *testing.T) {
		inv := validInvoice()
		inv.LineItems[0].LineTotal = invoice.Dec("101.00")
		assert.Empty(t, r.Evaluate(inv))
	})

	t.Run("fail_just_outside_tolerance", func(t *testing.T) {
		inv := validInvoice()
		inv.LineItems[0].LineTotal = invoice.Dec("101.01")
		violations := r.Evaluate(inv)
		require.Len(t, violations, 1)
		assert.Equal(t, "line_items_sum_match", violations[0].RuleID)
		assert.Contains(t, violations[0].Message, "101.01")
		assert.Contains(t, violations[0].Message, "100.00")
	})

	t.Run("small_net_uses_absolute_floor", func(t *testing.T) {
		// net 0.50: tolerance is 0.01 * max(0.50, 1) = 0.01, not half a cent
		inv := validInvoice()
		inv.NetTotal = invoice.Dec("0.50")
		inv.LineItems[0].LineTotal = invoice.Dec("0.51")
		assert.Empty(t, r.Evaluate(inv))

		inv.LineItems[0].LineTotal = invoice.Dec("0.52")
		assert.Len(t, r.Evaluate(inv), 1)
	})

	t.Run("sums_multiple_items", func(t *testing.T) {
		inv := validInvoice()
		inv.LineItems = []invoice.LineItem{
			{Position: 1, Description: "A", LineTotal: invoice.Dec("60.00")},
			{Position: 2, Description: "B", LineTotal: invoice.Dec("40.00")},
		}
		assert.Empty(t, r.Evaluate(inv))
	})

	t.Run("skips_items_without_line_total", func(t *testing.T) {
		inv := validInvoice()
		inv.LineItems = append(inv.LineItems, invoice.LineItem{Position: 2, Description: "Versand"})
		assert.Empty(t, r.Evaluate(inv))
	})

	t.Run("skip_no_net_total", func(t *testing.T) {
		inv := validInvoice()
		inv.NetTotal = nil
		assert.Empty(t, r.Evaluate(inv))
	})

	t.Run("skip_no_line_items", func(t *testing.T) {
		inv := validInvoice()
		inv.LineItems = nil
		assert.Empty(t, r.Evaluate(inv))
	})

	t.Run("skip_only_nil_line_totals", func(t *testing.T) {
		inv := validInvoice()
		inv.LineItems = []invoice.LineItem{{Position: 1, Description: "A"}}
		assert.Empty(t, r.Evaluate(inv))
	})

	t.Run("negative_net_uses_absolute_value", func(t *testing.T) {
		// |net| = 200 → tolerance 2.00
		inv := validInvoice()
		inv.NetTotal = invoice.Dec("-200.00")
		inv.LineItems[0].LineTotal = invoice.Dec("-198.00")
		assert.Empty(t, r.Evaluate(inv))

		inv.LineItems[0].LineTotal = invoice.Dec("-197.99")
		assert.Len(t, r.Evaluate(inv), 1)
	})
}

func TestTaxCalculationValid(t *testing.T) {
	r := findRule(t, "tax_calculation_valid")

	t.Run("pass_exact", func(t *testing.T) {
		assert.Empty(t, r.Evaluate(validInvoice()))
	})

	t.Run("pass_rounding_at_inclusive_edge", func(t *testing.T) {
		// 100.00 + 19.00 vs 119.02: discrepancy exactly 0.02 passes
		inv := validInvoice()
		inv.GrossTotal = invoice.Dec("119.02")
		assert.Empty(t, r.Evaluate(inv))
	})

	t.Run("fail_just_past_edge", func(t *testing.T) {
		inv := validInvoice()
		inv.GrossTotal = invoice.Dec("119.03")
		violations := r.Evaluate(inv)
		require.Len(t, violations, 1)
		assert.Equal(t, []string{"gross_total"}, fieldPaths(violations))
		assert.Contains(t, violations[0].Message, "tax calculation mismatch")
	})

	t.Run("fail_gross_below", func(t *testing.T) {
		inv := validInvoice()
		inv.GrossTotal = invoice.Dec("118.97")
		require.Len(t, r.Evaluate(inv), 1)
	})

	t.Run("skip_any_amount_absent", func(t *testing.T) {
		for _, clear := range []func(*invoice.Invoice){
			func(inv *invoice.Invoice) { inv.NetTotal = nil },
			func(inv *invoice.Invoice) { inv.TaxAmount = nil },
			func(inv *invoice.Invoice) { inv.GrossTotal = nil },
		} {
			inv := validInvoice()
			clear(inv)
			assert.Empty(t, r.Evaluate(inv))
		}
	})
}

func TestDueDateLogical(t *testing.T) {
	r := findRule(t, "due_date_logical")

	t.Run("pass_due_after_invoice", func(t *testing.T) {
		assert.Empty(t, r.Evaluate(validInvoice()))
	})

	t.Run("pass_same_day", func(t *testing.T) {
		inv := validInvoice()
		inv.DueDate = inv.InvoiceDate
		assert.Empty(t, r.Evaluate(inv))
	})

	t.Run("fail_due_before_invoice", func(t *testing.T) {
		inv := validInvoice()
		inv.DueDate = "2024-05-21"
		violations := r.Evaluate(inv)
		require.Len(t, violations, 1)
		assert.Equal(t, []string{"due_date"}, fieldPaths(violations))
		assert.Contains(t, violations[0].Message, "2024-05-21")
	})

	t.Run("skip_missing_date", func(t *testing.T) {
		inv := validInvoice()
		inv.DueDate = ""
		assert.Empty(t, r.Evaluate(inv))
	})

	t.Run("skip_unparseable_date", func(t *testing.T) {
		// the format rule owns this finding
		inv := validInvoice()
		inv.DueDate = "21.05.2024"
		assert.Empty(t, r.Evaluate(inv))
	})
}
