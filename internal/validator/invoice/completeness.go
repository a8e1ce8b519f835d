package invoice

import "fmt"

// requiredField names one field a completeness rule demands.
type requiredField struct {
	path    string
	extract func(*Invoice) string
}

// requiredFieldRule checks that one or more fields are present. It emits one
// violation per missing field, so a rule spanning several fields (such as
// the parties check) reports each absence separately.
type requiredFieldRule struct {
	id       string
	severity Severity
	fields   []requiredField
}

func (r *requiredFieldRule) ID() string         { return r.id }
func (r *requiredFieldRule) Category() Category { return CategoryCompleteness }
func (r *requiredFieldRule) Severity() Severity { return r.severity }

func (r *requiredFieldRule) Evaluate(inv *Invoice) []Violation {
	var out []Violation
	for _, f := range r.fields {
		if missing(f.extract(inv)) {
			out = append(out, Violation{
				RuleID:   r.id,
				Category: CategoryCompleteness,
				Field:    FieldRef(f.path),
				Message:  fmt.Sprintf("%s is missing or empty", f.path),
				Severity: r.severity,
			})
		}
	}
	return out
}

// CompletenessRules returns the required-field rules in canonical order.
func CompletenessRules() []*requiredFieldRule {
	return []*requiredFieldRule{
		{
			id: "invoice_number_required", severity: SeverityError,
			fields: []requiredField{
				{path: "invoice_number", extract: func(inv *Invoice) string { return inv.InvoiceNumber }},
			},
		},
		{
			id: "invoice_date_required", severity: SeverityError,
			fields: []requiredField{
				{path: "invoice_date", extract: func(inv *Invoice) string { return inv.InvoiceDate }},
			},
		},
		{
			id: "parties_required", severity: SeverityError,
			fields: []requiredField{
				{path: "buyer_name", extract: func(inv *Invoice) string { return inv.BuyerName }},
				{path: "seller_name", extract: func(inv *Invoice) string { return inv.SellerName }},
			},
		},
		{
			id: "currency_required", severity: SeverityError,
			fields: []requiredField{
				{path: "currency", extract: func(inv *Invoice) string { return inv.Currency }},
			},
		},
	}
}
