// Package streamlog abstracts the append-only log with consumer-group
// semantics (spec §6.3), decoupling the publisher and consumer from any
// concrete backing store.
package streamlog

import (
	"context"
	"time"
)

// Entry is one delivered log record: an opaque ordered id plus its fields.
type Entry struct {
	ID     string
	Fields map[string]string
}

// Log is an append-only log with consumer-group read and acknowledgement.
type Log interface {
	// CreateGroup ensures a consumer group exists on stream, reading only
	// entries appended after group creation. Idempotent: creating an
	// already-existing group is not an error.
	CreateGroup(ctx context.Context, stream, group string) error

	// Append writes fields as a new entry on stream and returns its id.
	Append(ctx context.Context, stream string, fields map[string]string) (string, error)

	// ReadGroup blocks up to block for up to count new entries delivered
	// to consumer within group. A zero-length, nil-error result means the
	// block elapsed with nothing new.
	ReadGroup(ctx context.Context, group, consumer, stream string, count int64, block time.Duration) ([]Entry, error)

	// Ack acknowledges id in group, removing it from the pending list.
	Ack(ctx context.Context, stream, group, id string) error
}
