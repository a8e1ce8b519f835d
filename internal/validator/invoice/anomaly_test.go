package invoice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoiceqc/internal/validator/invoice"
)

func TestTotalsNotZero(t *testing.T) {
	r := findRule(t, "totals_not_zero")

	t.Run("pass_nonzero", func(t *testing.T) {
		assert.Empty(t, r.Evaluate(validInvoice()))
	})

	t.Run("fail_zero", func(t *testing.T) {
		inv := validInvoice()
		inv.GrossTotal = invoice.Dec("0")
		violations := r.Evaluate(inv)
		require.Len(t, violations, 1)
		assert.Equal(t, "totals_not_zero", violations[0].RuleID)
		assert.Equal(t, invoice.CategoryAnomaly, violations[0].Category)
		assert.Equal(t, []string{"gross_total"}, fieldPaths(violations))
	})

	t.Run("fail_zero_with_decimals", func(t *testing.T) {
		inv := validInvoice()
		inv.GrossTotal = invoice.Dec("0.00")
		require.Len(t, r.Evaluate(inv), 1)
	})

	t.Run("skip_absent_gross", func(t *testing.T) {
		// null is a completeness concern, not an anomaly
		inv := validInvoice()
		inv.GrossTotal = nil
		assert.Empty(t, r.Evaluate(inv))
	})

	t.Run("pass_negative_not_flagged_here", func(t *testing.T) {
		inv := validInvoice()
		inv.GrossTotal = invoice.Dec("-5.00")
		assert.Empty(t, r.Evaluate(inv))
	})
}
