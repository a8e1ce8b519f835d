package validator

import (
	"sort"

	"invoiceqc/internal/validator/invoice"
)

// Result is the outcome for a single invoice. IsValid is true iff the
// invoice produced no error-severity violation; warnings alone leave it
// true. Violations preserve rule registration order.
type Result struct {
	InvoiceRef string              `json:"invoice_ref"`
	IsValid    bool                `json:"is_valid"`
	Violations []invoice.Violation `json:"violations"`
}

// Summary aggregates a report. ErrorFrequency counts, per rule, the number
// of distinct invoices that violated it; a rule firing three times on one
// invoice still counts once.
type Summary struct {
	TotalInvoices  int            `json:"total"`
	ValidCount     int            `json:"valid"`
	InvalidCount   int            `json:"invalid"`
	ErrorFrequency map[string]int `json:"error_frequency"`
}

// Report is the full outcome of one engine run. Results follow batch input
// order. The report carries no timestamp so identical input produces
// byte-identical output.
type Report struct {
	Results []Result `json:"results"`
	Summary Summary  `json:"summary"`
}

// FrequencyEntry is one row of the ranked error breakdown.
type FrequencyEntry struct {
	RuleID string `json:"rule_id"`
	Count  int    `json:"count"`
}

// TopErrors returns the frequency entries ordered by count descending, ties
// broken by rule ID ascending. n <= 0 or n beyond the entry count returns
// everything.
func (s Summary) TopErrors(n int) []FrequencyEntry {
	entries := make([]FrequencyEntry, 0, len(s.ErrorFrequency))
	for ruleID, count := range s.ErrorFrequency {
		entries = append(entries, FrequencyEntry{RuleID: ruleID, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].RuleID < entries[j].RuleID
	})
	if n > 0 && n < len(entries) {
		entries = entries[:n]
	}
	return entries
}

// newResult derives the per-invoice verdict from its violations.
func newResult(ref string, violations []invoice.Violation) Result {
	valid := true
	for i := range violations {
		if violations[i].Severity == invoice.SeverityError {
			valid = false
			break
		}
	}
	if violations == nil {
		violations = []invoice.Violation{}
	}
	return Result{InvoiceRef: ref, IsValid: valid, Violations: violations}
}

// buildReport assembles the summary from per-invoice results, keeping input
// order and deduplicating the frequency count per invoice per rule.
func buildReport(results []Result) Report {
	summary := Summary{
		TotalInvoices:  len(results),
		ErrorFrequency: make(map[string]int),
	}
	for i := range results {
		if results[i].IsValid {
			summary.ValidCount++
		} else {
			summary.InvalidCount++
		}
		seen := make(map[string]bool, len(results[i].Violations))
		for _, v := range results[i].Violations {
			if seen[v.RuleID] {
				continue
			}
			seen[v.RuleID] = true
			summary.ErrorFrequency[v.RuleID]++
		}
	}
	if results == nil {
		results = []Result{}
	}
	return Report{Results: results, Summary: summary}
}
