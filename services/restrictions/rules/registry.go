package rules

import "fmt"

// DefaultRules returns the compile-time set of concrete rules.
func DefaultRules() []Rule {
	return []Rule{
		UniqueZipCodeRule{},
		ScamMessageRule{},
		ChargebackRatioRule{},
	}
}

// Registry is a compile-time lookup table from rule name to implementation.
// No reflection, no dynamic registration at runtime.
type Registry struct {
	byName map[string]Rule
}

// NewRegistry builds a Registry from the given rules, erroring on duplicate names.
func NewRegistry(rules ...Rule) (*Registry, error) {
	byName := make(map[string]Rule, len(rules))
	for _, r := range rules {
		if _, exists := byName[r.Name()]; exists {
			return nil, fmt.Errorf("duplicate rule name %q", r.Name())
		}
		byName[r.Name()] = r
	}
	return &Registry{byName: byName}, nil
}

// Get looks up a rule by name. ok is false if no such rule is registered.
func (r *Registry) Get(name string) (Rule, bool) {
	rule, ok := r.byName[name]
	return rule, ok
}
