// Package eventhandler maps event names to the mutations they apply to a
// user aggregate, and to the rules that should run afterward.
package eventhandler

import (
	"context"

	"github.com/zacharyclement/feature-restrictions/services/restrictions/model"
)

// Handler mutates a user aggregate in response to one event and persists
// the mutation. Required-property validation failures are returned as
// model.ErrBadEventProperties wrapped with context; the consumer treats
// that as a poison-pill drop.
type Handler interface {
	EventName() string
	Handle(ctx context.Context, event model.Event, agg *model.UserAggregate) error
}
