package invoice

// Config carries the tunable thresholds for the built-in rule set. The zero
// value falls back to the documented defaults.
type Config struct {
	// KnownCurrencies is the case-sensitive set accepted by
	// currency_in_known_set.
	KnownCurrencies []string
	// SumTolerance is the allowed relative deviation between the line item
	// sum and net_total, as a ratio of max(|net_total|, 1).
	SumTolerance float64
	// TaxTolerance is the allowed absolute deviation of net + tax from
	// gross_total.
	TaxTolerance float64
}

// DefaultConfig returns the thresholds the rule contract documents.
func DefaultConfig() Config {
	return Config{
		KnownCurrencies: []string{"EUR", "USD", "GBP", "INR", "JPY", "CHF"},
		SumTolerance:    0.01,
		TaxTolerance:    0.02,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if len(c.KnownCurrencies) == 0 {
		c.KnownCurrencies = def.KnownCurrencies
	}
	if c.SumTolerance <= 0 {
		c.SumTolerance = def.SumTolerance
	}
	if c.TaxTolerance <= 0 {
		c.TaxTolerance = def.TaxTolerance
	}
	return c
}

// BuiltinRule wraps a rule function and its metadata for the registry.
type BuiltinRule struct {
	id       string
	category Category
	severity Severity
	fn       func(*Invoice) []Violation
}

func (b *BuiltinRule) ID() string                        { return b.id }
func (b *BuiltinRule) Category() Category                { return b.category }
func (b *BuiltinRule) Severity() Severity                { return b.severity }
func (b *BuiltinRule) Evaluate(inv *Invoice) []Violation { return b.fn(inv) }

// AllBuiltinRules returns the built-in per-invoice rules in canonical
// registration order: completeness, then format, then business, then
// anomaly. The duplicate detector is batch-scoped and wired separately, see
// NewDuplicateRule.
func AllBuiltinRules(cfg Config) []*BuiltinRule {
	cfg = cfg.withDefaults()
	compRules := CompletenessRules()
	fmtRules := FormatRules(cfg.KnownCurrencies)
	bizRules := BusinessRules(cfg.SumTolerance, cfg.TaxTolerance)
	anomRules := AnomalyRules()
	all := make([]*BuiltinRule, 0, len(compRules)+len(fmtRules)+len(bizRules)+len(anomRules))

	for _, r := range compRules {
		all = append(all, &BuiltinRule{id: r.ID(), category: r.Category(), severity: r.Severity(), fn: r.Evaluate})
	}
	for _, r := range fmtRules {
		all = append(all, &BuiltinRule{id: r.ID(), category: r.Category(), severity: r.Severity(), fn: r.fn})
	}
	for _, r := range bizRules {
		all = append(all, &BuiltinRule{id: r.ID(), category: r.Category(), severity: r.Severity(), fn: r.fn})
	}
	for _, r := range anomRules {
		all = append(all, &BuiltinRule{id: r.ID(), category: r.Category(), severity: r.Severity(), fn: r.fn})
	}

	return all
}
