package eventhandler

import (
	"context"
	"fmt"

	"github.com/zacharyclement/feature-restrictions/services/restrictions/model"
	"github.com/zacharyclement/feature-restrictions/services/restrictions/userstore"
)

// PurchaseMadeHandler accumulates lifetime spend. No rules run after this
// event; it only feeds the chargeback ratio's denominator.
type PurchaseMadeHandler struct {
	store userstore.UserStore
}

// NewPurchaseMadeHandler wires the handler to its user store.
func NewPurchaseMadeHandler(store userstore.UserStore) *PurchaseMadeHandler {
	return &PurchaseMadeHandler{store: store}
}

func (h *PurchaseMadeHandler) EventName() string { return "purchase_made" }

func (h *PurchaseMadeHandler) Handle(ctx context.Context, event model.Event, agg *model.UserAggregate) error {
	amount, err := floatProp(event, "amount")
	if err != nil {
		return err
	}

	agg.TotalSpend += amount

	if err := h.store.Save(ctx, agg); err != nil {
		return fmt.Errorf("save user %q after purchase_made: %w", agg.UserID, err)
	}
	return nil
}
