package rules

import "github.com/zacharyclement/feature-restrictions/services/restrictions/model"

// ScamMessageRule fires once a user has been flagged for scam messages
// at least twice.
type ScamMessageRule struct{}

func (ScamMessageRule) Name() string { return "scam_message_rule" }

func (ScamMessageRule) Evaluate(agg *model.UserAggregate) bool {
	return agg.ScamMessageFlags >= 2
}

func (ScamMessageRule) Apply(agg *model.UserAggregate) {
	agg.AccessFlags.CanMessage = false
}
