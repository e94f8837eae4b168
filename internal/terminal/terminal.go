// ============================================================================
// Eventphase Terminal States
// ============================================================================
//
// Package: internal/terminal
// File: terminal.go
// Purpose: Completed and Cancelled terminal behaviors: run the
// appropriate listener group in priority order, then always run
// Complete listeners, then set the event's final flags. No suspension
// is possible here (spec.md §4.9) — a Waiting listener result is
// treated as Success, matching how a condition-skip is treated as
// Success in the phase package.
//
// ============================================================================

package terminal

import (
	"fmt"

	"github.com/ChuLiYu/eventphase/pkg/events"
)

// RunCompleted runs Failure listeners when hasFailures is set,
// otherwise Success listeners, then always runs Complete listeners,
// then marks the event completed.
func RunCompleted(ctx events.Context, success, failure, complete []*events.HandlerEntry, hasFailures bool) {
	if hasFailures {
		runListeners(ctx, failure)
	} else {
		runListeners(ctx, success)
	}
	runListeners(ctx, complete)

	ev := ctx.Event()
	ev.HasFailures = hasFailures
	ev.IsCompleted = true
}

// RunCancelled runs Cancel listeners then Complete listeners, then
// marks the event both cancelled and completed — Complete listeners
// always run as the last step before the dispatcher returns (spec.md
// §4.8).
func RunCancelled(ctx events.Context, cancel, complete []*events.HandlerEntry) {
	runListeners(ctx, cancel)
	runListeners(ctx, complete)

	ev := ctx.Event()
	ev.IsCancelled = true
	ev.IsCompleted = true
}

// runListeners executes entries in the priority order the registry
// snapshot already established, skipping any whose condition is
// false. Terminal handlers cannot suspend, so their return value is
// otherwise unobserved.
func runListeners(ctx events.Context, entries []*events.HandlerEntry) {
	for _, entry := range entries {
		if !entry.Condition()(ctx.Event(), entry) {
			continue
		}
		entry.IncrementExecutionCount()
		invoke(ctx, entry)
	}
}

// invoke runs entry's handler, recovering a panic the same way
// phase.base.invoke does: the dispatcher never propagates a handler
// exception to the caller of dispatch (spec.md §7), and that contract
// does not stop at the primary phases — a panicking listener reached
// from finalize must not crash through Dispatch/ResumeEvent/FailEvent/
// CancelEvent either.
func invoke(ctx events.Context, entry *events.HandlerEntry) {
	defer func() {
		if r := recover(); r != nil {
			events.SetData(ctx, events.PanicDataKey, fmt.Errorf("handler panic: %v", r))
		}
	}()
	entry.Handler()(ctx)
}
