// Package publisher validates and appends events to the durable log on
// behalf of the HTTP ingress.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/zacharyclement/feature-restrictions/services/restrictions/model"
	"github.com/zacharyclement/feature-restrictions/services/restrictions/streamlog"
)

// knownEventNames is the closed set accepted at ingress; anything else is
// rejected before it ever reaches the log.
var knownEventNames = map[string]struct{}{
	"credit_card_added":    {},
	"scam_message_flagged": {},
	"chargeback_occurred":  {},
	"purchase_made":        {},
}

// Publisher validates an event and appends it to the durable log.
type Publisher interface {
	Publish(ctx context.Context, event model.Event) error
}

// StreamPublisher is the Log-backed Publisher implementation.
type StreamPublisher struct {
	log       streamlog.Log
	streamKey string
	logger    zerolog.Logger
}

// NewStreamPublisher wires a Publisher to the given log and stream key.
func NewStreamPublisher(log streamlog.Log, streamKey string, logger zerolog.Logger) *StreamPublisher {
	return &StreamPublisher{
		log:       log,
		streamKey: streamKey,
		logger:    logger.With().Str("component", "publisher").Logger(),
	}
}

// Publish validates event per spec §6.1/§7 and appends it to the log.
func (p *StreamPublisher) Publish(ctx context.Context, event model.Event) error {
	if _, ok := knownEventNames[event.Name]; !ok {
		return fmt.Errorf("unknown event name %q: %w", event.Name, model.ErrBadEvent)
	}
	if len(event.EventProperties) == 0 {
		return fmt.Errorf("event_properties must not be empty: %w", model.ErrBadEvent)
	}
	if _, ok := event.UserID(); !ok {
		return fmt.Errorf("event_properties.user_id missing or invalid: %w", model.ErrBadEvent)
	}

	raw, err := json.Marshal(event.EventProperties)
	if err != nil {
		return fmt.Errorf("marshal event_properties: %w", model.ErrBadEvent)
	}

	id, err := p.log.Append(ctx, p.streamKey, map[string]string{
		"name":             event.Name,
		"event_properties": string(raw),
	})
	if err != nil {
		return err
	}

	p.logger.Debug().Str("entry_id", id).Str("event_name", event.Name).Msg("event appended to stream")
	return nil
}
