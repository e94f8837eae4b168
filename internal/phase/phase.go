// ============================================================================
// Eventphase Phase State — shared machinery
// ============================================================================
//
// Package: internal/phase
// File: phase.go
// Purpose: Shared machinery common to the four concrete phase behaviors:
// the ordered handler list, per-handler result bookkeeping, and condition
// evaluation. Collapses what the source spread across a phase-state class
// hierarchy (spec.md §9: "collapse partial classes into one cohesive
// module") into one package with four small, focused files.
//
// ============================================================================

package phase

import (
	"errors"
	"fmt"

	"github.com/ChuLiYu/eventphase/pkg/events"
)

// ErrNotSuspended is returned by Resume/Fail/Cancel on a phase that
// never suspends (Validate) or is not the kind of phase state that
// recognizes the call in its current position.
var ErrNotSuspended = errors.New("phase: not suspended")

// Transition is the result of a Process/Resume/Fail/Cancel call: how
// the owning business state should react.
type Transition struct {
	// Result is this phase run's PhaseResult.
	Result events.PhaseResult

	// Next names the phase the business state should move to. Empty
	// means "no further primary phase" — the business state decides
	// the terminal route itself.
	Next events.PhaseTag

	// Self is true when the phase is still waiting and should be
	// resumed/failed/cancelled in place rather than replaced.
	Self bool
}

// Phase is the capability interface implemented by each of the four
// concrete phase behaviors. Favoring this interface plus shared data
// over an inheritance hierarchy makes every transition a total
// function of (state, signal) -> Transition, per spec.md §9.
type Phase interface {
	Kind() events.PhaseTag
	Process() Transition
	Resume() (Transition, error)
	Fail() (Transition, error)
	Cancel() (Transition, error)
	HasFailures() bool
	Cancelled() bool
}

// base holds the fields every concrete phase state needs: the
// remaining handler entries (already priority-ordered by the
// registry snapshot), a cursor into them, per-handler results, and
// the waiting-handler counter described in spec.md §3.
type base struct {
	kind    events.PhaseTag
	ctx     events.Context
	entries []*events.HandlerEntry
	pos     int

	results      map[*events.HandlerEntry]events.HandlerResult
	waitingCount int
	current      *events.HandlerEntry

	hasFailures bool
	cancelled   bool

	// onExec, if set, is called once per actual handler invocation
	// (condition-skips do not count). Used to feed
	// internal/metrics.Collector.RecordHandlerExecuted without this
	// package importing Prometheus directly.
	onExec func(events.PhaseTag)
}

func newBase(kind events.PhaseTag, ctx events.Context, entries []*events.HandlerEntry, onExec func(events.PhaseTag)) base {
	return base{
		kind:    kind,
		ctx:     ctx,
		entries: entries,
		results: make(map[*events.HandlerEntry]events.HandlerResult, len(entries)),
		onExec:  onExec,
	}
}

func (b *base) Kind() events.PhaseTag { return b.kind }
func (b *base) HasFailures() bool     { return b.hasFailures }
func (b *base) Cancelled() bool       { return b.cancelled }

func (b *base) hasMore() bool { return b.pos < len(b.entries) }

// runOne evaluates the condition and, if it passes, runs the next
// entry's handler. It returns the entry together with the effective
// result — ResultSuccess for a condition-skip, matching spec.md §8
// property 4 ("condition skip ... contributing Success to
// aggregation").
func (b *base) runOne() (*events.HandlerEntry, events.HandlerResult) {
	entry := b.entries[b.pos]
	b.pos++

	if !entry.Condition()(b.ctx.Event(), entry) {
		return entry, events.ResultSuccess
	}

	entry.IncrementExecutionCount()
	if b.onExec != nil {
		b.onExec(b.kind)
	}
	return entry, b.invoke(entry)
}

// invoke runs entry's handler, recovering a panic into a Failure
// result with the panic value attached to the context's data map
// under events.PanicDataKey, per spec.md §7: the dispatcher never
// propagates a handler exception to the caller of dispatch.
func (b *base) invoke(entry *events.HandlerEntry) (result events.HandlerResult) {
	defer func() {
		if r := recover(); r != nil {
			events.SetData(b.ctx, events.PanicDataKey, fmt.Errorf("handler panic: %v", r))
			result = events.ResultFailure
		}
	}()
	return entry.Handler()(b.ctx)
}

// allFailed reports whether every recorded result so far is Failure.
// Used by Configure's after-loop check (spec.md §4.5).
func (b *base) allFailed() bool {
	if len(b.results) == 0 {
		return false
	}
	for _, r := range b.results {
		if r != events.ResultFailure {
			return false
		}
	}
	return true
}
