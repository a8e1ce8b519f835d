package validator

import "fmt"

// Registry holds validation rules in registration order. The order is part of
// the engine contract: violations for an invoice are reported in the order
// the rules were registered.
type Registry struct {
	rules []Rule
	byID  map[string]Rule
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]Rule)}
}

// Register appends a rule. Registering a second rule with the same ID is a
// programming error and is rejected.
func (r *Registry) Register(rule Rule) error {
	if _, exists := r.byID[rule.ID()]; exists {
		return fmt.Errorf("registry.Register: duplicate rule id %q", rule.ID())
	}
	r.rules = append(r.rules, rule)
	r.byID[rule.ID()] = rule
	return nil
}

// MustRegister registers a rule and panics on a duplicate ID. Intended for
// wiring the built-in rule set at startup.
func (r *Registry) MustRegister(rules ...Rule) {
	for _, rule := range rules {
		if err := r.Register(rule); err != nil {
			panic(err)
		}
	}
}

// Get returns the rule for a given ID, or nil if not registered.
func (r *Registry) Get(id string) Rule {
	return r.byID[id]
}

// Rules returns the registered rules in registration order. The returned
// slice must not be modified.
func (r *Registry) Rules() []Rule {
	return r.rules
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	return len(r.rules)
}
