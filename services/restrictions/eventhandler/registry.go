package eventhandler

import (
	"github.com/zacharyclement/feature-restrictions/services/restrictions/userstore"
)

// rulesByEvent is the compile-time event-name -> rule-names table from
// spec §4.4. purchase_made runs no rules; it only feeds total_spend.
var rulesByEvent = map[string][]string{
	"credit_card_added":    {"unique_zip_code_rule"},
	"scam_message_flagged": {"scam_message_rule"},
	"chargeback_occurred":  {"chargeback_ratio_rule"},
	"purchase_made":        {},
}

// Registry is a compile-time lookup from event name to handler, and from
// event name to the rules that should run after the handler completes.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry builds the default handler set wired to the given store.
func NewRegistry(store userstore.UserStore) *Registry {
	handlers := []Handler{
		NewCreditCardAddedHandler(store),
		NewScamMessageFlaggedHandler(store),
		NewChargebackOccurredHandler(store),
		NewPurchaseMadeHandler(store),
	}
	byName := make(map[string]Handler, len(handlers))
	for _, h := range handlers {
		byName[h.EventName()] = h
	}
	return &Registry{handlers: byName}
}

// Get returns the handler for an event name. ok is false for unknown names.
func (r *Registry) Get(eventName string) (Handler, bool) {
	h, ok := r.handlers[eventName]
	return h, ok
}

// RulesFor returns the rule names that should run after the given event's
// handler completes. Returns (nil, false) for an unknown event name.
func (r *Registry) RulesFor(eventName string) ([]string, bool) {
	names, ok := rulesByEvent[eventName]
	return names, ok
}
