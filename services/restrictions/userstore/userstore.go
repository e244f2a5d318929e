// Package userstore reads and writes per-user aggregate state.
package userstore

import (
	"context"

	"github.com/zacharyclement/feature-restrictions/services/restrictions/model"
)

// UserStore is the contract from spec §4.1. Implementations need no own
// locking — correctness comes from the consumer's single-writer property.
type UserStore interface {
	// Get returns the stored aggregate, or model.ErrUserNotFound if absent.
	Get(ctx context.Context, userID string) (*model.UserAggregate, error)
	// Create writes a default aggregate and returns it. Idempotent overwrite permitted.
	Create(ctx context.Context, userID string) (*model.UserAggregate, error)
	// Save replaces the aggregate at agg.UserID. Durable on return.
	Save(ctx context.Context, agg *model.UserAggregate) error
	// Delete removes the aggregate if present.
	Delete(ctx context.Context, userID string) error
	// Count returns the number of aggregates currently stored. Need not be
	// strongly consistent with concurrent writes.
	Count(ctx context.Context) (int, error)
	// Clear removes all aggregates. Used at lifecycle boundaries.
	Clear(ctx context.Context) error
}
