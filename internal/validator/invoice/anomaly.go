package invoice

// anomalyRule flags values that are technically well-formed but almost
// certainly wrong, usually an upstream extraction defect.
type anomalyRule struct {
	id       string
	severity Severity
	fn       func(*Invoice) []Violation
}

func (r *anomalyRule) ID() string                      { return r.id }
func (r *anomalyRule) Category() Category              { return CategoryAnomaly }
func (r *anomalyRule) Severity() Severity              { return r.severity }
func (r *anomalyRule) Evaluate(inv *Invoice) []Violation { return r.fn(inv) }

// AnomalyRules returns the per-invoice anomaly rules. Duplicate detection is
// also an anomaly rule but needs batch scope, see DuplicateRule.
func AnomalyRules() []*anomalyRule {
	return []*anomalyRule{
		{
			id: "totals_not_zero", severity: SeverityError,
			fn: func(inv *Invoice) []Violation {
				if inv.GrossTotal == nil || !inv.GrossTotal.IsZero() {
					return nil
				}
				return []Violation{{
					RuleID:   "totals_not_zero",
					Category: CategoryAnomaly,
					Field:    FieldRef("gross_total"),
					Message:  "gross_total is zero, likely extraction error",
					Severity: SeverityError,
				}}
			},
		},
	}
}
