package model

import "errors"

// Sentinel errors forming the closed error taxonomy from the error
// handling design: handlers and rules never swallow unknown errors,
// they propagate wrapped around one of these and the caller matches
// with errors.Is.
var (
	// ErrBadEvent marks an event rejected at ingress: missing name,
	// missing/invalid user_id, or unparseable JSON. Never enters the log.
	ErrBadEvent = errors.New("bad event")

	// ErrUnknownEventName marks an event name with no registered handler.
	ErrUnknownEventName = errors.New("unknown event name")

	// ErrBadEventProperties marks a handler finding a required property missing.
	ErrBadEventProperties = errors.New("bad event properties")

	// ErrUserNotFound marks a lookup for a user_id with no stored aggregate.
	ErrUserNotFound = errors.New("user not found")

	// ErrBackingStoreTransient marks a network/connection error against
	// the backing store. The caller should not acknowledge and let
	// redelivery retry.
	ErrBackingStoreTransient = errors.New("backing store transient error")

	// ErrFatal marks a startup failure that should abort the process.
	ErrFatal = errors.New("fatal startup error")
)
