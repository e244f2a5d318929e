package rules

import "github.com/zacharyclement/feature-restrictions/services/restrictions/model"

// UniqueZipCodeRule fires when a user adds enough distinct credit cards
// with enough distinct zip codes among them to smell like card testing.
type UniqueZipCodeRule struct{}

func (UniqueZipCodeRule) Name() string { return "unique_zip_code_rule" }

func (UniqueZipCodeRule) Evaluate(agg *model.UserAggregate) bool {
	if agg.TotalCreditCards <= 2 {
		return false
	}
	ratio := float64(agg.UniqueZipCodes.Len()) / float64(agg.TotalCreditCards)
	return ratio > 0.75
}

func (UniqueZipCodeRule) Apply(agg *model.UserAggregate) {
	agg.AccessFlags.CanPurchase = false
}
