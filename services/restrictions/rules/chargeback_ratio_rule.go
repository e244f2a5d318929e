package rules

import "github.com/zacharyclement/feature-restrictions/services/restrictions/model"

// ChargebackRatioRule fires when a user's lifetime chargeback amount
// exceeds 10% of their lifetime spend.
type ChargebackRatioRule struct{}

func (ChargebackRatioRule) Name() string { return "chargeback_ratio_rule" }

func (ChargebackRatioRule) Evaluate(agg *model.UserAggregate) bool {
	if agg.TotalSpend <= 0 {
		return false
	}
	ratio := agg.TotalChargebacks / agg.TotalSpend
	return ratio > 0.10
}

func (ChargebackRatioRule) Apply(agg *model.UserAggregate) {
	agg.AccessFlags.CanPurchase = false
}
