package dispatcher

import (
	"errors"
	"fmt"

	"github.com/ChuLiYu/eventphase/internal/phase"
	"github.com/ChuLiYu/eventphase/pkg/events"
)

// Dispatcher misuse errors are surfaced synchronously to the caller
// and never alter event state (spec.md §7).
var (
	// ErrNilEntry is returned by RegisterHandler when entry is nil.
	ErrNilEntry = errors.New("dispatcher: handler entry is nil")

	// ErrUnknownEvent is returned by a SuspendHandle method once the
	// event it was issued for is no longer tracked as in-flight — it
	// has already reached a terminal outcome. Callers see it wrapped
	// with the offending EventID via EventError.
	ErrUnknownEvent = errors.New("dispatcher: event is not in flight")

	// ErrAlreadyResolved is returned by Resume/Fail/Cancel on a
	// SuspendHandle that already drove its event to completion.
	// Callers see it wrapped with the offending EventID via EventError.
	ErrAlreadyResolved = errors.New("dispatcher: handle already resolved")

	// ErrNotSuspended is returned when Resume/Fail/Cancel reaches a
	// phase that never suspended in the first place — a phase-level
	// misuse rather than a handle-level one (see internal/phase).
	ErrNotSuspended = phase.ErrNotSuspended
)

// EventError exposes the EventID a dispatcher misuse error relates to,
// the same correlation-metadata shape a task-pool error carries a
// failing task's id and index.
type EventError interface {
	error
	Unwrap() error
	EventID() events.EventID
}

type eventTaggedError struct {
	err error
	id  events.EventID
}

func newEventError(err error, id events.EventID) error {
	return &eventTaggedError{err: err, id: id}
}

func (e *eventTaggedError) Error() string           { return fmt.Sprintf("%s: event %s", e.err.Error(), e.id) }
func (e *eventTaggedError) Unwrap() error           { return e.err }
func (e *eventTaggedError) EventID() events.EventID { return e.id }

// ExtractEventID returns the EventID tagged onto err, if any.
func ExtractEventID(err error) (events.EventID, bool) {
	var ee EventError
	if errors.As(err, &ee) {
		return ee.EventID(), true
	}
	return "", false
}
