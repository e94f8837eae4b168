// ============================================================================
// Eventphase Dispatcher
// ============================================================================
//
// Package: internal/dispatcher
// File: dispatcher.go
// Purpose: Entry point described in spec.md §4.3 — accepts an event,
// builds its context and initial Business State from a registry
// snapshot, drives the state machine until it suspends or reaches a
// terminal outcome, and runs the matching terminal listeners. Grounded
// on the teacher's internal/controller: one struct owning the
// long-lived collaborators (registry, metrics), a map of in-flight
// work guarded by its own mutex, package-level slog logger.
//
// ============================================================================

package dispatcher

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ChuLiYu/eventphase/internal/business"
	"github.com/ChuLiYu/eventphase/internal/eventctx"
	"github.com/ChuLiYu/eventphase/internal/registry"
	"github.com/ChuLiYu/eventphase/pkg/events"
)

var log = slog.Default()

// Metrics is the subset of internal/metrics.Collector the dispatcher
// calls into. Declared here, implemented there, so this package does
// not depend on Prometheus directly.
type Metrics interface {
	RecordOutcome(events.Outcome)
	RecordSuspension(delta int)
	RecordHandlerExecuted(events.PhaseTag)
	RecordPhaseDuration(phase events.PhaseTag, seconds float64)
}

// Option configures a Dispatcher at construction time.
type Option func(*Dispatcher)

// WithMetrics attaches a metrics collector. Optional; a nil collector
// (the default) means every metrics call is a no-op.
func WithMetrics(m Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

type inFlight struct {
	// mu serializes resume/fail/cancel signals for this event, so a
	// signal that looked the event up just before another one settled
	// it cannot drive the finished state machine a second time.
	mu    sync.Mutex
	ctx   *eventctx.Context
	state *business.State
	// listener snapshot taken once at dispatch time, alongside the
	// business phases, per the registry's single-snapshot contract.
	success  []*events.HandlerEntry
	failure  []*events.HandlerEntry
	cancel   []*events.HandlerEntry
	complete []*events.HandlerEntry
}

// Dispatcher is the façade described in spec.md §4.3 and §6.
type Dispatcher struct {
	reg     *registry.Registry
	metrics Metrics

	mu       sync.Mutex
	inFlight map[events.EventID]*inFlight
}

// New creates a Dispatcher backed by reg.
func New(reg *registry.Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		reg:      reg,
		inFlight: make(map[events.EventID]*inFlight),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// RegisterHandler registers entry against eventType and returns an id
// usable with UnregisterHandler.
func (d *Dispatcher) RegisterHandler(eventType events.EventType, entry *events.HandlerEntry) (registry.HandlerID, error) {
	if entry == nil {
		return "", ErrNilEntry
	}
	return d.reg.Register(eventType, entry), nil
}

// UnregisterHandler removes a previously registered handler. It
// reports false if id is unknown.
func (d *Dispatcher) UnregisterHandler(id registry.HandlerID) bool {
	return d.reg.Unregister(id)
}

// Dispatch accepts event, runs it through the phase sequence, and
// returns the resulting Outcome. A Suspended outcome is accompanied
// by a non-nil SuspendHandle; every other outcome's handle is nil.
func (d *Dispatcher) Dispatch(event *events.Event) (events.Outcome, *SuspendHandle, error) {
	snapshot := d.reg.Snapshot(event.Type)
	ctx := eventctx.New(event, d.reg)
	state := business.New(ctx, snapshot, d.onHandlerExecuted)

	flight := &inFlight{
		ctx:      ctx,
		state:    state,
		success:  snapshot[events.PhaseSuccessListener],
		failure:  snapshot[events.PhaseFailureListener],
		cancel:   snapshot[events.PhaseCancelListener],
		complete: snapshot[events.PhaseCompleteListener],
	}

	log.Debug("dispatch started", "event_id", event.ID, "event_type", event.Type)
	return d.settle(event.ID, flight, func() (events.StateResult, error) {
		return state.Run(), nil
	})
}

// settle drives a state transition, then either parks flight as
// in-flight (Waiting) or finalizes it through the matching terminal
// state and reports the resulting Outcome.
func (d *Dispatcher) settle(id events.EventID, flight *inFlight, step func() (events.StateResult, error)) (events.Outcome, *SuspendHandle, error) {
	phaseAtStart := flight.state.CurrentPhase()
	started := time.Now()
	result, err := step()
	if d.metrics != nil {
		d.metrics.RecordPhaseDuration(phaseAtStart, time.Since(started).Seconds())
	}
	if err != nil {
		return "", nil, err
	}

	switch result {
	case events.StateResultWaiting:
		d.mu.Lock()
		_, wasInFlight := d.inFlight[id]
		d.inFlight[id] = flight
		d.mu.Unlock()
		flight.ctx.Event().IsWaiting = true
		log.Debug("dispatch suspended", "event_id", id, "phase", flight.state.CurrentPhase())
		if !wasInFlight {
			d.recordSuspension(1)
		}
		return events.OutcomeSuspended, &SuspendHandle{d: d, eventID: id}, nil

	default:
		d.mu.Lock()
		_, wasInFlight := d.inFlight[id]
		delete(d.inFlight, id)
		d.mu.Unlock()
		if wasInFlight {
			d.recordSuspension(-1)
		}
		flight.ctx.Event().IsWaiting = false

		outcome := d.finalize(flight, result)
		log.Info("dispatch finished", "event_id", id, "outcome", outcome)
		if d.metrics != nil {
			d.metrics.RecordOutcome(outcome)
		}
		return outcome, nil, nil
	}
}

func (d *Dispatcher) recordSuspension(delta int) {
	if d.metrics != nil {
		d.metrics.RecordSuspension(delta)
	}
}

func (d *Dispatcher) onHandlerExecuted(phase events.PhaseTag) {
	if d.metrics != nil {
		d.metrics.RecordHandlerExecuted(phase)
	}
}

func (d *Dispatcher) finalize(flight *inFlight, result events.StateResult) events.Outcome {
	switch result {
	case events.StateResultCancelled:
		runCancelledTerminal(flight)
		return events.OutcomeCancelled
	case events.StateResultFailure:
		runCompletedTerminal(flight, true)
		return events.OutcomeCompletedWithFailures
	default: // StateResultSuccess
		runCompletedTerminal(flight, false)
		return events.OutcomeCompleted
	}
}

func (d *Dispatcher) eventFlight(id events.EventID) (*inFlight, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	flight, ok := d.inFlight[id]
	if !ok {
		return nil, newEventError(ErrUnknownEvent, id)
	}
	return flight, nil
}

// signalEvent looks up id's in-flight entry and drives it through
// signal. Shared by SuspendHandle (which also tracks per-handle
// resolution) and the ResumeEvent/FailEvent/CancelEvent family below,
// which let code that only has an EventID — not the SuspendHandle
// issued at suspension time, such as an async callback fired after
// the handler that created the suspension already returned — resolve
// it directly.
func (d *Dispatcher) signalEvent(id events.EventID, signal func(*inFlight) (events.StateResult, error)) (events.Outcome, error) {
	flight, err := d.eventFlight(id)
	if err != nil {
		return "", err
	}
	flight.mu.Lock()
	defer flight.mu.Unlock()
	if _, err := d.eventFlight(id); err != nil {
		return "", err
	}
	outcome, _, err := d.settle(id, flight, func() (events.StateResult, error) {
		return signal(flight)
	})
	if err != nil {
		return "", err
	}
	return outcome, nil
}

// ResumeEvent signals a resume for the event identified by id, without
// requiring the SuspendHandle originally returned for it.
func (d *Dispatcher) ResumeEvent(id events.EventID) (events.Outcome, error) {
	return d.signalEvent(id, func(flight *inFlight) (events.StateResult, error) {
		return flight.state.Resume()
	})
}

// FailEvent signals a failure for the event identified by id, without
// requiring the SuspendHandle originally returned for it.
func (d *Dispatcher) FailEvent(id events.EventID) (events.Outcome, error) {
	return d.signalEvent(id, func(flight *inFlight) (events.StateResult, error) {
		return flight.state.Fail()
	})
}

// CancelEvent signals a cancellation for the event identified by id,
// without requiring the SuspendHandle originally returned for it.
func (d *Dispatcher) CancelEvent(id events.EventID) (events.Outcome, error) {
	return d.signalEvent(id, func(flight *inFlight) (events.StateResult, error) {
		return flight.state.Cancel()
	})
}
