package eventhandler

import (
	"context"
	"fmt"

	"github.com/zacharyclement/feature-restrictions/services/restrictions/model"
	"github.com/zacharyclement/feature-restrictions/services/restrictions/userstore"
)

// ChargebackOccurredHandler accumulates lifetime chargeback amount. Not
// idempotent: redelivery over-counts, an accepted trade-off for this event.
type ChargebackOccurredHandler struct {
	store userstore.UserStore
}

// NewChargebackOccurredHandler wires the handler to its user store.
func NewChargebackOccurredHandler(store userstore.UserStore) *ChargebackOccurredHandler {
	return &ChargebackOccurredHandler{store: store}
}

func (h *ChargebackOccurredHandler) EventName() string { return "chargeback_occurred" }

func (h *ChargebackOccurredHandler) Handle(ctx context.Context, event model.Event, agg *model.UserAggregate) error {
	amount, err := floatProp(event, "amount")
	if err != nil {
		return err
	}

	agg.TotalChargebacks += amount

	if err := h.store.Save(ctx, agg); err != nil {
		return fmt.Errorf("save user %q after chargeback_occurred: %w", agg.UserID, err)
	}
	return nil
}
