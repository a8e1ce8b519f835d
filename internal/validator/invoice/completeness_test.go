package invoice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoiceqc/internal/validator/invoice"
)

func TestCompletenessRules_Count(t *testing.T) {
	assert.Len(t, invoice.CompletenessRules(), 4)
}

func TestCompletenessRules_Metadata(t *testing.T) {
	for _, r := range invoice.CompletenessRules() {
		assert.NotEmpty(t, r.ID())
		assert.Equal(t, invoice.CategoryCompleteness, r.Category())
		assert.Equal(t, invoice.SeverityError, r.Severity())
	}
}

func TestInvoiceNumberRequired(t *testing.T) {
	r := findRule(t, "invoice_number_required")

	t.Run("pass_present", func(t *testing.T) {
		assert.Empty(t, r.Evaluate(validInvoice()))
	})

	t.Run("fail_empty", func(t *testing.T) {
		inv := validInvoice()
		inv.InvoiceNumber = ""
		violations := r.Evaluate(inv)
		require.Len(t, violations, 1)
		assert.Equal(t, "invoice_number_required", violations[0].RuleID)
		assert.Equal(t, []string{"invoice_number"}, fieldPaths(violations))
	})

	t.Run("fail_whitespace_only", func(t *testing.T) {
		inv := validInvoice()
		inv.InvoiceNumber = "   \t"
		require.Len(t, r.Evaluate(inv), 1)
	})
}

func TestInvoiceDateRequired(t *testing.T) {
	r := findRule(t, "invoice_date_required")

	inv := validInvoice()
	inv.InvoiceDate = ""
	violations := r.Evaluate(inv)
	require.Len(t, violations, 1)
	assert.Equal(t, []string{"invoice_date"}, fieldPaths(violations))
	assert.Contains(t, violations[0].Message, "invoice_date is missing")
}

func TestPartiesRequired(t *testing.T) {
	r := findRule(t, "parties_required")

	t.Run("pass_both_present", func(t *testing.T) {
		assert.Empty(t, r.Evaluate(validInvoice()))
	})

	t.Run("fail_missing_seller", func(t *testing.T) {
		inv := validInvoice()
		inv.SellerName = ""
		violations := r.Evaluate(inv)
		require.Len(t, violations, 1)
		assert.Equal(t, []string{"seller_name"}, fieldPaths(violations))
	})

	t.Run("fail_missing_buyer", func(t *testing.T) {
		inv := validInvoice()
		inv.BuyerName = " "
		violations := r.Evaluate(inv)
		require.Len(t, violations, 1)
		assert.Equal(t, []string{"buyer_name"}, fieldPaths(violations))
	})

	t.Run("fail_both_missing_two_violations", func(t *testing.T) {
		inv := validInvoice()
		inv.BuyerName = ""
		inv.SellerName = ""
		violations := r.Evaluate(inv)
		require.Len(t, violations, 2)
		assert.Equal(t, []string{"buyer_name", "seller_name"}, fieldPaths(violations))
		for _, v := range violations {
			assert.Equal(t, "parties_required", v.RuleID)
		}
	})
}

func TestCurrencyRequired(t *testing.T) {
	r := findRule(t, "currency_required")

	inv := validInvoice()
	inv.Currency = ""
	violations := r.Evaluate(inv)
	require.Len(t, violations, 1)
	assert.Equal(t, []string{"currency"}, fieldPaths(violations))
}
