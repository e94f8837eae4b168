package events

import "github.com/google/uuid"

// EventID uniquely identifies a dispatched event.
type EventID string

// EventType names the family of handlers an event is routed to.
type EventType string

// Event is the user-visible payload that travels through the phase
// sequence. Handlers read it; only the core writes the completion
// flags (internal/terminal sets IsCompleted, IsCancelled and
// HasFailures; internal/dispatcher sets IsWaiting).
//
// Payload is an immutable data view: code that receives an *Event must
// not mutate Payload. Mutable per-handler scratch space belongs in the
// Event Context's data map instead (see Context.SetData).
type Event struct {
	ID      EventID
	Type    EventType
	Payload map[string]any

	IsCancelled bool
	HasFailures bool
	IsCompleted bool
	IsWaiting   bool
}

// New creates an Event with a freshly generated ID.
//
// Example:
//
//	ev := events.New("order.placed", map[string]any{"orderID": "o-1"})
func New(eventType EventType, payload map[string]any) *Event {
	if payload == nil {
		payload = map[string]any{}
	}
	return &Event{
		ID:      EventID(uuid.NewString()),
		Type:    eventType,
		Payload: payload,
	}
}
