package events

import "sync/atomic"

// Condition is evaluated immediately before a handler runs. A false
// result skips the handler without affecting its execution counter;
// the skip counts as Success for phase aggregation purposes.
type Condition func(event *Event, entry *HandlerEntry) bool

// HandlerFunc is the function a handler entry wraps.
type HandlerFunc func(ctx Context) HandlerResult

// HandlerEntry is immutable after Build: phase tag, priority,
// condition, and handler function never change once registered. The
// registry may remove an entry, but never edit it. The execution
// counter is the one mutable field, and it is write-only by the
// dispatcher core — see IncrementExecutionCount.
type HandlerEntry struct {
	phase     PhaseTag
	priority  Priority
	condition Condition
	handler   HandlerFunc

	execCount uint64
}

// Phase returns the phase tag this entry was registered against.
func (e *HandlerEntry) Phase() PhaseTag { return e.phase }

// Priority returns the entry's priority ordinal.
func (e *HandlerEntry) Priority() Priority { return e.priority }

// Condition returns the entry's guard predicate. It is never nil: a
// builder with no explicit condition defaults to an always-true one.
func (e *HandlerEntry) Condition() Condition { return e.condition }

// Handler returns the wrapped handler function.
func (e *HandlerEntry) Handler() HandlerFunc { return e.handler }

// ExecutionCount returns how many times the core has invoked this
// entry's handler (skips via Condition do not count).
func (e *HandlerEntry) ExecutionCount() uint64 {
	return atomic.LoadUint64(&e.execCount)
}

// IncrementExecutionCount records one handler invocation. It is called
// by the dispatcher core (internal/phase, internal/terminal) only;
// user code must not call it.
func (e *HandlerEntry) IncrementExecutionCount() {
	atomic.AddUint64(&e.execCount, 1)
}

func alwaysTrue(*Event, *HandlerEntry) bool { return true }

// HandlerBuilder builds an immutable HandlerEntry. It is consumed
// exactly once: a second call to Build returns ErrBuilderConsumed,
// replacing the source's "already built" mutable flag with a builder
// that simply cannot be reused.
type HandlerBuilder struct {
	phase     PhaseTag
	priority  Priority
	hasPrio   bool
	condition Condition
	handler   HandlerFunc
	built     bool
}

// NewHandlerBuilder starts building a handler entry for the given
// phase tag. Priority defaults to PriorityNormal if WithPriority is
// never called.
func NewHandlerBuilder(phase PhaseTag) *HandlerBuilder {
	return &HandlerBuilder{phase: phase, priority: PriorityNormal}
}

// WithPriority sets the entry's priority ordinal.
func (b *HandlerBuilder) WithPriority(p Priority) *HandlerBuilder {
	b.priority = p
	b.hasPrio = true
	return b
}

// WithCondition sets the entry's guard predicate.
func (b *HandlerBuilder) WithCondition(c Condition) *HandlerBuilder {
	b.condition = c
	return b
}

// WithHandler sets the entry's handler function.
func (b *HandlerBuilder) WithHandler(h HandlerFunc) *HandlerBuilder {
	b.handler = h
	return b
}

// Build consumes the builder and returns the immutable entry.
func (b *HandlerBuilder) Build() (*HandlerEntry, error) {
	if b.built {
		return nil, ErrBuilderConsumed
	}
	if b.handler == nil {
		return nil, ErrNilHandler
	}
	if b.hasPrio && !b.priority.Valid() {
		return nil, ErrInvalidPriority
	}
	b.built = true

	cond := b.condition
	if cond == nil {
		cond = alwaysTrue
	}

	return &HandlerEntry{
		phase:     b.phase,
		priority:  b.priority,
		condition: cond,
		handler:   b.handler,
	}, nil
}
