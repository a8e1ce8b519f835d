package validator

import "invoiceqc/internal/validator/invoice"

// Rule is the interface for a single built-in validation rule. Evaluate
// returns failures only; a clean invoice yields an empty slice. Rules must
// not mutate the invoice.
type Rule interface {
	ID() string
	Category() invoice.Category
	Severity() invoice.Severity
	Evaluate(inv *invoice.Invoice) []invoice.Violation
}

// BatchRule is a rule that needs visibility across the whole batch, such as
// duplicate detection. Violations are keyed by batch index.
type BatchRule interface {
	ID() string
	Category() invoice.Category
	Severity() invoice.Severity
	EvaluateBatch(batch []invoice.Invoice) map[int][]invoice.Violation
}
