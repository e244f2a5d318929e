// Package rules implements the three abuse-detection predicates and the
// tripwire-aware processor that drives them against a user aggregate.
package rules

import (
	"context"
	"fmt"

	"github.com/zacharyclement/feature-restrictions/services/restrictions/model"
	"github.com/zacharyclement/feature-restrictions/services/restrictions/tripwire"
	"github.com/zacharyclement/feature-restrictions/services/restrictions/userstore"
)

// Outcome is the result of running one rule against one user.
type Outcome int

const (
	// Skipped means the predicate evaluated false; no mutation happened.
	Skipped Outcome = iota
	// Applied means the predicate fired, the aggregate was mutated and saved.
	Applied
	// Disabled means the tripwire has thrown for this rule; untouched.
	Disabled
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Disabled:
		return "disabled"
	default:
		return "skipped"
	}
}

// Rule is a pure-ish predicate over a user aggregate plus the mutation to
// apply when it fires. Evaluate must never mutate agg and must never panic
// on zero denominators.
type Rule interface {
	Name() string
	Evaluate(agg *model.UserAggregate) bool
	Apply(agg *model.UserAggregate)
}

// Processor wires the tripwire and user store around rule evaluation,
// per the process() contract: disabled check, then evaluate, then
// apply+save. It never records tripwire state itself — the caller
// (the consumer) does that after observing Applied, since the tripwire
// needs a fresh total-user count taken after the save.
type Processor struct {
	store userstore.UserStore
	twCtl tripwire.Controller
}

// NewProcessor builds a Processor over the given collaborators.
func NewProcessor(store userstore.UserStore, twCtl tripwire.Controller) *Processor {
	return &Processor{store: store, twCtl: twCtl}
}

// Process runs one rule against one user aggregate, per spec §4.3.
func (p *Processor) Process(ctx context.Context, rule Rule, agg *model.UserAggregate) (Outcome, error) {
	disabled, err := p.twCtl.IsDisabled(ctx, rule.Name())
	if err != nil {
		return Skipped, fmt.Errorf("check tripwire for rule %q: %w", rule.Name(), err)
	}
	if disabled {
		return Disabled, nil
	}

	if !rule.Evaluate(agg) {
		return Skipped, nil
	}

	rule.Apply(agg)
	if err := p.store.Save(ctx, agg); err != nil {
		return Skipped, fmt.Errorf("save user %q after rule %q: %w", agg.UserID, rule.Name(), err)
	}
	return Applied, nil
}
