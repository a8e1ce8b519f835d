package invoice

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// businessRule checks arithmetic and logical relationships between fields.
// A business rule whose inputs are absent or unparseable emits nothing; the
// completeness and format rules own those findings.
type businessRule struct {
	id       string
	severity Severity
	fn       func(*Invoice) []Violation
}

func (r *businessRule) ID() string                      { return r.id }
func (r *businessRule) Category() Category              { return CategoryBusiness }
func (r *businessRule) Severity() Severity              { return r.severity }
func (r *businessRule) Evaluate(inv *Invoice) []Violation { return r.fn(inv) }

// BusinessRules returns the cross-field rules in canonical order.
//
// sumTolerance is relative: the line item sum may deviate from net_total by
// sumTolerance x max(|net_total|, 1). The floor keeps near-zero invoices
// from demanding sub-cent agreement. taxTolerance is absolute; both bounds
// are inclusive, a discrepancy exactly at the tolerance passes.
func BusinessRules(sumTolerance, taxTolerance float64) []*businessRule {
	sumTol := decimal.NewFromFloat(sumTolerance)
	taxTol := decimal.NewFromFloat(taxTolerance)
	one := decimal.NewFromInt(1)

	return []*businessRule{
		{
			id: "line_items_sum_match", severity: SeverityError,
			fn: func(inv *Invoice) []Violation {
				if inv.NetTotal == nil {
					return nil
				}
				sum := decimal.Zero
				counted := 0
				for i := range inv.LineItems {
					if lt := inv.LineItems[i].LineTotal; lt != nil {
						sum = sum.Add(*lt)
						counted++
					}
				}
				if counted == 0 {
					return nil
				}
				base := inv.NetTotal.Abs()
				if base.LessThan(one) {
					base = one
				}
				if sum.Sub(*inv.NetTotal).Abs().GreaterThan(base.Mul(sumTol)) {
					return []Violation{{
						RuleID:   "line_items_sum_match",
						Category: CategoryBusiness,
						Field:    FieldRef("net_total"),
						Message: fmt.Sprintf("line_items sum (%s) does not match net_total (%s)",
							sum.StringFixed(2), inv.NetTotal.StringFixed(2)),
						Severity: SeverityError,
					}}
				}
				return nil
			},
		},
		{
			id: "tax_calculation_valid", severity: SeverityError,
			fn: func(inv *Invoice) []Violation {
				if inv.NetTotal == nil || inv.TaxAmount == nil || inv.GrossTotal == nil {
					return nil
				}
				expected := inv.NetTotal.Add(*inv.TaxAmount)
				if expected.Sub(*inv.GrossTotal).Abs().GreaterThan(taxTol) {
					return []Violation{{
						RuleID:   "tax_calculation_valid",
						Category: CategoryBusiness,
						Field:    FieldRef("gross_total"),
						Message: fmt.Sprintf("tax calculation mismatch: net (%s) + tax (%s) != gross (%s)",
							inv.NetTotal.StringFixed(2), inv.TaxAmount.StringFixed(2), inv.GrossTotal.StringFixed(2)),
						Severity: SeverityError,
					}}
				}
				return nil
			},
		},
		{
			id: "due_date_logical", severity: SeverityError,
			fn: func(inv *Invoice) []Violation {
				if missing(inv.InvoiceDate) || missing(inv.DueDate) {
					return nil
				}
				invDate, err := parseISODate(inv.InvoiceDate)
				if err != nil {
					return nil
				}
				dueDate, err := parseISODate(inv.DueDate)
				if err != nil {
					return nil
				}
				if dueDate.Before(invDate) {
					return []Violation{{
						RuleID:   "due_date_logical",
						Category: CategoryBusiness,
						Field:    FieldRef("due_date"),
						Message: fmt.Sprintf("due_date (%s) is before invoice_date (%s)",
							inv.DueDate, inv.InvoiceDate),
						Severity: SeverityError,
					}}
				}
				return nil
			},
		},
	}
}
