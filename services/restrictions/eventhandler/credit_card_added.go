package eventhandler

import (
	"context"
	"fmt"

	"github.com/zacharyclement/feature-restrictions/services/restrictions/model"
	"github.com/zacharyclement/feature-restrictions/services/restrictions/userstore"
)

// CreditCardAddedHandler records a new card_id/zip_code pair, first-write-
// wins per card_id. Idempotent: replaying the same card_id is a no-op.
type CreditCardAddedHandler struct {
	store userstore.UserStore
}

// NewCreditCardAddedHandler wires the handler to its user store.
func NewCreditCardAddedHandler(store userstore.UserStore) *CreditCardAddedHandler {
	return &CreditCardAddedHandler{store: store}
}

func (h *CreditCardAddedHandler) EventName() string { return "credit_card_added" }

func (h *CreditCardAddedHandler) Handle(ctx context.Context, event model.Event, agg *model.UserAggregate) error {
	cardID, err := stringProp(event, "card_id")
	if err != nil {
		return err
	}
	zipCode, err := stringProp(event, "zip_code")
	if err != nil {
		return err
	}

	if _, exists := agg.CreditCards[cardID]; exists {
		return nil
	}

	agg.CreditCards[cardID] = zipCode
	agg.TotalCreditCards++
	agg.UniqueZipCodes.Add(zipCode)

	if err := h.store.Save(ctx, agg); err != nil {
		return fmt.Errorf("save user %q after credit_card_added: %w", agg.UserID, err)
	}
	return nil
}
