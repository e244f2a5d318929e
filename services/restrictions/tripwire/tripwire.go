// Package tripwire tracks, per rule, a sliding-window set of affected
// users and derives a disabled/enabled state from the affected fraction
// relative to a live user count.
package tripwire

import "context"

// Controller is the contract from spec §4.2.
type Controller interface {
	// IsDisabled returns the current disabled bit for a rule, default false.
	IsDisabled(ctx context.Context, ruleName string) (bool, error)

	// RecordAndRecompute expires stale entries, records userID as affected
	// by ruleName at the current time, and recomputes the disabled bit
	// against totalUsers. totalUsers is passed in so the controller stays
	// pure with respect to its own state plus inputs.
	RecordAndRecompute(ctx context.Context, ruleName, userID string, totalUsers int) error

	// DisabledRules returns a snapshot of every rule's disabled bit.
	DisabledRules(ctx context.Context) (map[string]bool, error)

	// Clear resets all tripwire state.
	Clear(ctx context.Context) error
}
