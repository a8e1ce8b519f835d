package invoice

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// isoDateLayout is the only accepted date format. time.Parse rejects
// impossible calendar dates, so 2024-02-30 fails while 2024-02-29 passes.
const isoDateLayout = "2006-01-02"

func parseISODate(s string) (time.Time, error) {
	return time.Parse(isoDateLayout, strings.TrimSpace(s))
}

// formatRule checks field syntax and value ranges.
type formatRule struct {
	id       string
	severity Severity
	fn       func(*Invoice) []Violation
}

func (r *formatRule) ID() string                      { return r.id }
func (r *formatRule) Category() Category              { return CategoryFormat }
func (r *formatRule) Severity() Severity              { return r.severity }
func (r *formatRule) Evaluate(inv *Invoice) []Violation { return r.fn(inv) }

// dateField pairs a field path with its accessor, in reporting order.
type dateField struct {
	path    string
	extract func(*Invoice) string
}

var dateFields = []dateField{
	{"invoice_date", func(inv *Invoice) string { return inv.InvoiceDate }},
	{"due_date", func(inv *Invoice) string { return inv.DueDate }},
	{"delivery_date", func(inv *Invoice) string { return inv.DeliveryDate }},
}

// amountField pairs a top-level amount path with its accessor.
type amountField struct {
	path    string
	extract func(*Invoice) *decimal.Decimal
}

var amountFields = []amountField{
	{"net_total", func(inv *Invoice) *decimal.Decimal { return inv.NetTotal }},
	{"tax_amount", func(inv *Invoice) *decimal.Decimal { return inv.TaxAmount }},
	{"gross_total", func(inv *Invoice) *decimal.Decimal { return inv.GrossTotal }},
}

// itemAmountField pairs a line-item amount name with its accessor.
type itemAmountField struct {
	name    string
	extract func(*LineItem) *decimal.Decimal
}

var itemAmountFields = []itemAmountField{
	{"quantity", func(li *LineItem) *decimal.Decimal { return li.Quantity }},
	{"unit_price", func(li *LineItem) *decimal.Decimal { return li.UnitPrice }},
	{"line_total", func(li *LineItem) *decimal.Decimal { return li.LineTotal }},
}

// FormatRules returns the format rules in canonical order. The currency set
// is configurable; matching is case sensitive, so "eur" is rejected even
// when "EUR" is allowed. Absent fields are skipped here, the completeness
// rules own those.
func FormatRules(currencies []string) []*formatRule {
	known := make(map[string]bool, len(currencies))
	for _, c := range currencies {
		known[c] = true
	}

	return []*formatRule{
		{
			id: "date_format_valid", severity: SeverityError,
			fn: func(inv *Invoice) []Violation {
				var out []Violation
				for _, f := range dateFields {
					val := f.extract(inv)
					if missing(val) {
						continue
					}
					if _, err := parseISODate(val); err != nil {
						out = append(out, Violation{
							RuleID:   "date_format_valid",
							Category: CategoryFormat,
							Field:    FieldRef(f.path),
							Message:  fmt.Sprintf("%s has invalid format: %s", f.path, val),
							Severity: SeverityError,
						})
					}
				}
				return out
			},
		},
		{
			id: "currency_in_known_set", severity: SeverityError,
			fn: func(inv *Invoice) []Violation {
				if missing(inv.Currency) || known[inv.Currency] {
					return nil
				}
				return []Violation{{
					RuleID:   "currency_in_known_set",
					Category: CategoryFormat,
					Field:    FieldRef("currency"),
					Message:  fmt.Sprintf("currency %q not in known set %v", inv.Currency, currencies),
					Severity: SeverityError,
				}}
			},
		},
		{
			id: "amounts_non_negative", severity: SeverityError,
			fn: func(inv *Invoice) []Violation {
				var out []Violation
				for _, f := range amountFields {
					if v := f.extract(inv); v != nil && v.IsNegative() {
						out = append(out, negativeAmount(f.path, v))
					}
				}
				for i := range inv.LineItems {
					item := &inv.LineItems[i]
					for _, f := range itemAmountFields {
						if v := f.extract(item); v != nil && v.IsNegative() {
							path := fmt.Sprintf("line_items[%d].%s", i, f.name)
							out = append(out, negativeAmount(path, v))
						}
					}
				}
				return out
			},
		},
	}
}

func negativeAmount(path string, v *decimal.Decimal) Violation {
	return Violation{
		RuleID:   "amounts_non_negative",
		Category: CategoryFormat,
		Field:    FieldRef(path),
		Message:  fmt.Sprintf("%s is negative: %s", path, v.StringFixed(2)),
		Severity: SeverityError,
	}
}
