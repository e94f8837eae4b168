// ============================================================================
// Eventphase Event Context
// ============================================================================
//
// Package: internal/eventctx
// File: context.go
// Purpose: Per-event mutable bag: owns the event, a typed data map, and
// a reference to the registry so handlers can inspect (but not mutate)
// the registration set mid-event.
//
// Lifecycle:
//   Created when the dispatcher accepts an event; discarded once a
//   terminal state reports completion. Nothing here is persisted.
//
// ============================================================================

package eventctx

import (
	"sync"

	"github.com/ChuLiYu/eventphase/internal/registry"
	"github.com/ChuLiYu/eventphase/pkg/events"
)

// Context implements events.Context. It is the concrete Event Context
// described in spec.md §4.2.
type Context struct {
	mu       sync.RWMutex
	event    *events.Event
	data     map[any]any
	registry *registry.Registry
}

// New creates a context owning event, backed by reg for read-only
// sibling inspection.
func New(event *events.Event, reg *registry.Registry) *Context {
	return &Context{
		event:    event,
		data:     make(map[any]any),
		registry: reg,
	}
}

// Event returns the owned event.
func (c *Context) Event() *events.Event { return c.event }

// RawGet implements events.Context.
func (c *Context) RawGet(key any) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.data[key]
	return v, ok
}

// RawSet implements events.Context.
func (c *Context) RawSet(key any, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
}

// SiblingHandlers returns the handler entries registered for the
// owned event's type and phase, for inspection only — the registry
// itself cannot be mutated through this accessor.
func (c *Context) SiblingHandlers(phase events.PhaseTag) []*events.HandlerEntry {
	return c.registry.ListFor(c.event.Type, phase)
}
