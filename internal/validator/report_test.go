package validator_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoiceqc/internal/validator"
	"invoiceqc/internal/validator/invoice"
)

func TestSummary_TopErrors(t *testing.T) {
	s := validator.Summary{
		ErrorFrequency: map[string]int{
			"tax_calculation_valid":   3,
			"invoice_number_required": 5,
			"currency_in_known_set":   3,
			"totals_not_zero":         1,
		},
	}

	t.Run("ordered_by_count_then_rule_id", func(t *testing.T) {
		entries := s.TopErrors(0)
		require.Len(t, entries, 4)
		assert.Equal(t, validator.FrequencyEntry{RuleID: "invoice_number_required", Count: 5}, entries[0])
		// tie on 3 broken by rule id
		assert.Equal(t, "currency_in_known_set", entries[1].RuleID)
		assert.Equal(t, "tax_calculation_valid", entries[2].RuleID)
		assert.Equal(t, "totals_not_zero", entries[3].RuleID)
	})

	t.Run("truncates_to_n", func(t *testing.T) {
		entries := s.TopErrors(2)
		require.Len(t, entries, 2)
		assert.Equal(t, "invoice_number_required", entries[0].RuleID)
	})

	t.Run("n_beyond_len_returns_all", func(t *testing.T) {
		assert.Len(t, s.TopErrors(100), 4)
	})

	t.Run("empty_frequency", func(t *testing.T) {
		assert.Empty(t, validator.Summary{ErrorFrequency: map[string]int{}}.TopErrors(10))
	})
}

func TestReport_JSONShape(t *testing.T) {
	inv := validInvoice()
	inv.SellerName = ""
	report := defaultEngine().Run([]invoice.Invoice{inv})

	data, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	require.Contains(t, decoded, "results")
	require.Contains(t, decoded, "summary")
	// determinism: no timestamp or run metadata in the report body
	assert.NotContains(t, decoded, "generated_at")
	assert.NotContains(t, decoded, "timestamp")

	summary, ok := decoded["summary"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, summary["total"])
	assert.EqualValues(t, 0, summary["valid"])
	assert.EqualValues(t, 1, summary["invalid"])

	results, ok := decoded["results"].([]any)
	require.True(t, ok)
	first, ok := results[0].(map[string]any)
	require.True(t, ok)
	violations, ok := first["violations"].([]any)
	require.True(t, ok)
	v0, ok := violations[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "parties_required", v0["rule_id"])
	assert.Equal(t, "completeness", v0["category"])
	assert.Equal(t, "seller_name", v0["field"])
	assert.Equal(t, "error", v0["severity"])
}

func TestReport_ValidInvoiceHasEmptyViolationArray(t *testing.T) {
	report := defaultEngine().Run([]invoice.Invoice{validInvoice()})

	data, err := json.Marshal(report)
	require.NoError(t, err)
	// violations serialize as [] rather than null
	assert.Contains(t, string(data), `"violations":[]`)
}

func TestReport_EmptyBatchJSON(t *testing.T) {
	data, err := json.Marshal(defaultEngine().Run(nil))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"results":[]`)
	assert.Contains(t, string(data), `"error_frequency":{}`)
}
