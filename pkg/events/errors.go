package events

import "errors"

// Registration errors, surfaced synchronously to the caller of the
// builder or the registry — never unwound through a dispatch call.
var (
	// ErrBuilderConsumed is returned by a second call to
	// HandlerBuilder.Build on the same builder.
	ErrBuilderConsumed = errors.New("events: builder already consumed")

	// ErrNilHandler is returned by Build when no handler function was
	// set.
	ErrNilHandler = errors.New("events: handler function is required")

	// ErrInvalidPriority is returned by Build when an out-of-range
	// priority ordinal was set explicitly.
	ErrInvalidPriority = errors.New("events: invalid priority ordinal")
)

// reservedKey is an unexported type so only this package can mint new
// reserved data-bag keys, the same "opaque key by identity" idiom
// spec.md §4.2 calls for applied to the core's own reserved slots.
type reservedKey int

// PanicDataKey is the Context data-bag key under which a recovered
// handler panic is stored (as an error) before its HandlerResult is
// recorded as Failure. See GetData[error](ctx, events.PanicDataKey).
const PanicDataKey reservedKey = iota
