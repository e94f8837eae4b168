// ============================================================================
// Eventphase Business State
// ============================================================================
//
// Package: internal/business
// File: state.go
// Purpose: Composes the four phase states into the fixed Validate ->
// Configure -> Execute -> Cleanup -> terminal sequence, aggregating
// has_failures/cancelled across every phase and forwarding resume/fail/
// cancel signals to whichever phase is currently suspended. Grounded on
// the teacher's internal/controller: one mutex guarding the whole
// lifecycle, the same way Controller serializes dispatch/result/timeout
// handling against its own state.
//
// ============================================================================

package business

import (
	"sync"

	"github.com/ChuLiYu/eventphase/internal/phase"
	"github.com/ChuLiYu/eventphase/pkg/events"
)

// State drives one event's phase sequence. It is created once per
// dispatched event and discarded once a terminal result is reached.
type State struct {
	mu sync.Mutex

	validate  *phase.ValidatePhase
	configure *phase.ConfigurePhase
	execute   *phase.ExecutePhase
	cleanup   *phase.CleanupPhase
	current   phase.Phase

	result      events.StateResult
	hasFailures bool
	cancelled   bool
}

// New builds a Business State positioned at Validate. snapshot supplies
// the priority-ordered handler entries for each business phase, as
// produced by registry.Registry.Snapshot. onHandlerExecuted, if
// non-nil, is called once per actual handler invocation across all
// four phases — the dispatcher uses it to feed handler-execution
// metrics without this package depending on Prometheus.
func New(ctx events.Context, snapshot map[events.PhaseTag][]*events.HandlerEntry, onHandlerExecuted func(events.PhaseTag)) *State {
	s := &State{
		validate:  phase.NewValidate(ctx, snapshot[events.PhaseValidate], onHandlerExecuted),
		configure: phase.NewConfigure(ctx, snapshot[events.PhaseConfigure], onHandlerExecuted),
		execute:   phase.NewExecute(ctx, snapshot[events.PhaseExecute], onHandlerExecuted),
		cleanup:   phase.NewCleanup(ctx, snapshot[events.PhaseCleanup], onHandlerExecuted),
		result:    events.StateResultUnknown,
	}
	s.current = s.validate
	return s
}

// Result returns the most recently observed StateResult.
func (s *State) Result() events.StateResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// CurrentPhase returns the phase tag currently active (or last active,
// once terminal). Useful for logging and misuse detection at the
// dispatcher layer.
func (s *State) CurrentPhase() events.PhaseTag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Kind()
}

// HasFailures reports whether any phase recorded a Failure result.
func (s *State) HasFailures() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasFailures
}

// Cancelled reports whether any phase recorded a Cancelled result.
func (s *State) Cancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

// Run drives the state machine from its current position until it
// either suspends (StateResultWaiting) or reaches a terminal
// StateResult.
func (s *State) Run() events.StateResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advance(s.current.Process())
}

// Resume forwards a resume signal to the currently suspended phase.
func (s *State) Resume() (events.StateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.current.Resume()
	if err != nil {
		return s.result, err
	}
	return s.advance(t), nil
}

// Fail forwards a fail signal to the currently suspended phase.
func (s *State) Fail() (events.StateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.current.Fail()
	if err != nil {
		return s.result, err
	}
	return s.advance(t), nil
}

// Cancel forwards a cancel signal to the currently suspended phase.
func (s *State) Cancel() (events.StateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.current.Cancel()
	if err != nil {
		return s.result, err
	}
	return s.advance(t), nil
}

// advance walks transitions until one suspends the state or leaves no
// further phase to enter, at which point the terminal StateResult is
// computed from the aggregated has_failures/cancelled flags (spec.md
// §4.8).
//
// Must be called with mu held.
func (s *State) advance(t phase.Transition) events.StateResult {
	for {
		if t.Result == events.PhaseResultWaiting {
			s.result = events.StateResultWaiting
			return s.result
		}

		s.hasFailures = s.hasFailures || s.current.HasFailures()
		s.cancelled = s.cancelled || s.current.Cancelled()

		if t.Next == "" {
			return s.finish()
		}

		s.current = s.phaseFor(t.Next)
		t = s.current.Process()
	}
}

func (s *State) phaseFor(tag events.PhaseTag) phase.Phase {
	switch tag {
	case events.PhaseConfigure:
		return s.configure
	case events.PhaseExecute:
		return s.execute
	case events.PhaseCleanup:
		return s.cleanup
	default:
		// Unreachable: every phase.Transition.Next value is produced by
		// this package's own phase implementations.
		panic("business: unknown phase transition target " + string(tag))
	}
}

func (s *State) finish() events.StateResult {
	switch {
	case s.cancelled:
		s.result = events.StateResultCancelled
	case s.hasFailures:
		s.result = events.StateResultFailure
	default:
		s.result = events.StateResultSuccess
	}
	return s.result
}
