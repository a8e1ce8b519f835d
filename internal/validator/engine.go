package validator

import (
	"encoding/json"
	"fmt"
	"strings"

	"invoiceqc/internal/validator/invoice"
)

// UnparseableRuleID is the synthetic rule reported for batch elements that
// cannot be decoded into an invoice. A malformed element never aborts the
// run; it yields exactly one violation under this ID and the remaining
// elements are evaluated normally.
const UnparseableRuleID = "unparseable_record"

// Engine runs every registered rule over a batch of invoices and assembles
// the report. Run is pure: no clock, no randomness, no I/O, so the same
// batch against the same registry produces byte-identical reports.
type Engine struct {
	registry   *Registry
	batchRules []BatchRule
}

// NewEngine creates an engine over a rule registry and optional batch-scope
// rules. Batch rule violations are appended after the per-invoice ones, in
// the order given here.
func NewEngine(registry *Registry, batchRules ...BatchRule) *Engine {
	return &Engine{registry: registry, batchRules: batchRules}
}

// NewDefaultEngine builds an engine carrying the full built-in rule set,
// including the batch-scope duplicate detector.
func NewDefaultEngine(cfg invoice.Config) *Engine {
	reg := NewRegistry()
	for _, r := range invoice.AllBuiltinRules(cfg) {
		reg.MustRegister(r)
	}
	return NewEngine(reg, invoice.NewDuplicateRule())
}

// RuleInfo describes one registered rule for inventory endpoints.
type RuleInfo struct {
	ID       string           `json:"id"`
	Category invoice.Category `json:"category"`
	Severity invoice.Severity `json:"severity"`
}

// Rules returns the rule inventory: per-invoice rules in registration
// order, then batch rules.
func (e *Engine) Rules() []RuleInfo {
	out := make([]RuleInfo, 0, e.registry.Len()+len(e.batchRules))
	for _, r := range e.registry.Rules() {
		out = append(out, RuleInfo{ID: r.ID(), Category: r.Category(), Severity: r.Severity()})
	}
	for _, br := range e.batchRules {
		out = append(out, RuleInfo{ID: br.ID(), Category: br.Category(), Severity: br.Severity()})
	}
	return out
}

// batchEntry pairs a decoded invoice with its decode error, if any.
type batchEntry struct {
	inv       invoice.Invoice
	decodeErr error
}

// Run validates a batch of already-decoded invoices. Results follow input
// order; each invoice's violations follow rule registration order, with
// batch-scope violations appended last. An empty batch yields a valid
// report with zero totals.
func (e *Engine) Run(batch []invoice.Invoice) Report {
	entries := make([]batchEntry, len(batch))
	for i := range batch {
		entries[i] = batchEntry{inv: batch[i]}
	}
	return e.run(entries)
}

// RunRaw validates a batch of raw JSON elements. Each element is decoded
// independently; one that is not an invoice-shaped object contributes a
// single unparseable_record violation instead of aborting the batch.
func (e *Engine) RunRaw(raw []json.RawMessage) Report {
	entries := make([]batchEntry, len(raw))
	for i, msg := range raw {
		var inv invoice.Invoice
		if err := json.Unmarshal(msg, &inv); err != nil {
			entries[i] = batchEntry{decodeErr: err}
			continue
		}
		entries[i] = batchEntry{inv: inv}
	}
	return e.run(entries)
}

// RunPartial validates a batch in which some elements never became
// invoices. errs runs parallel to batch; a non-nil error at index i yields
// a single unparseable_record violation carrying that error, and the
// invoice at i is ignored. Used by the run pipeline so a document whose
// extraction failed still occupies its position in the report.
func (e *Engine) RunPartial(batch []invoice.Invoice, errs []error) Report {
	entries := make([]batchEntry, len(batch))
	for i := range batch {
		if i < len(errs) && errs[i] != nil {
			entries[i] = batchEntry{decodeErr: errs[i]}
			continue
		}
		entries[i] = batchEntry{inv: batch[i]}
	}
	return e.run(entries)
}

func (e *Engine) run(entries []batchEntry) Report {
	violations := make([][]invoice.Violation, len(entries))

	for i := range entries {
		if entries[i].decodeErr != nil {
			violations[i] = []invoice.Violation{{
				RuleID:   UnparseableRuleID,
				Category: invoice.CategoryFormat,
				Message:  fmt.Sprintf("record could not be decoded as an invoice: %v", entries[i].decodeErr),
				Severity: invoice.SeverityError,
			}}
			continue
		}
		inv := &entries[i].inv
		for _, rule := range e.registry.Rules() {
			violations[i] = append(violations[i], rule.Evaluate(inv)...)
		}
	}

	// Batch-scope rules see only the decodable entries, at their original
	// indices, so first-occurrence semantics survive malformed neighbors.
	batch := make([]invoice.Invoice, len(entries))
	for i := range entries {
		if entries[i].decodeErr == nil {
			batch[i] = entries[i].inv
		}
	}
	for _, br := range e.batchRules {
		extra := br.EvaluateBatch(batch)
		for i := range entries {
			if entries[i].decodeErr != nil {
				continue
			}
			violations[i] = append(violations[i], extra[i]...)
		}
	}

	results := make([]Result, len(entries))
	for i := range entries {
		results[i] = newResult(invoiceRef(&entries[i].inv, i), violations[i])
	}
	return buildReport(results)
}

// invoiceRef labels a result: the invoice number when present, otherwise a
// positional reference that stays unique within the batch.
func invoiceRef(inv *invoice.Invoice, index int) string {
	if num := strings.TrimSpace(inv.InvoiceNumber); num != "" {
		return num
	}
	return fmt.Sprintf("invoice[%d]", index)
}
