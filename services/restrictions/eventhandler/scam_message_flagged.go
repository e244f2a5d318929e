package eventhandler

import (
	"context"
	"fmt"

	"github.com/zacharyclement/feature-restrictions/services/restrictions/model"
	"github.com/zacharyclement/feature-restrictions/services/restrictions/userstore"
)

// ScamMessageFlaggedHandler increments the scam message counter. Not
// idempotent: redelivery over-counts, an accepted trade-off for this event.
type ScamMessageFlaggedHandler struct {
	store userstore.UserStore
}

// NewScamMessageFlaggedHandler wires the handler to its user store.
func NewScamMessageFlaggedHandler(store userstore.UserStore) *ScamMessageFlaggedHandler {
	return &ScamMessageFlaggedHandler{store: store}
}

func (h *ScamMessageFlaggedHandler) EventName() string { return "scam_message_flagged" }

func (h *ScamMessageFlaggedHandler) Handle(ctx context.Context, event model.Event, agg *model.UserAggregate) error {
	agg.ScamMessageFlags++

	if err := h.store.Save(ctx, agg); err != nil {
		return fmt.Errorf("save user %q after scam_message_flagged: %w", agg.UserID, err)
	}
	return nil
}
