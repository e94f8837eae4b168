package phase

import "github.com/ChuLiYu/eventphase/pkg/events"

// ExecutePhase runs the event's primary work. Unlike Configure,
// Execute does not stop at the first Waiting handler: it keeps
// invoking every remaining handler so independent work can run
// concurrently, and only reports Waiting once the whole list has
// been walked and outstanding suspensions remain (spec.md §4.6). A
// Cancelled result is the one outcome that still short-circuits,
// detouring straight to Cleanup.
type ExecutePhase struct {
	base
}

// NewExecute builds an Execute phase state over entries.
func NewExecute(ctx events.Context, entries []*events.HandlerEntry, onExec func(events.PhaseTag)) *ExecutePhase {
	return &ExecutePhase{base: newBase(events.PhaseExecute, ctx, entries, onExec)}
}

func (p *ExecutePhase) Process() Transition {
	for p.hasMore() {
		entry, result := p.runOne()

		switch result {
		case events.ResultCancelled:
			p.results[entry] = events.ResultCancelled
			p.cancelled = true
			return Transition{Result: events.PhaseResultCancelled, Next: events.PhaseCleanup}

		case events.ResultWaiting:
			p.waitingCount++
			if p.waitingCount == 0 {
				// Already resumed ahead of the Waiting return; see
				// spec.md §8 scenario S6.
				p.results[entry] = events.ResultSuccess
			} else {
				p.results[entry] = events.ResultWaiting
			}

		default: // ResultSuccess, ResultFailure, ResultUnknown
			if result == events.ResultUnknown {
				result = events.ResultFailure
			}
			if result == events.ResultFailure {
				p.hasFailures = true
			}
			p.results[entry] = result
		}
	}

	return p.finish()
}

func (p *ExecutePhase) finish() Transition {
	if p.waitingCount > 0 {
		return Transition{Result: events.PhaseResultWaiting, Self: true}
	}
	if p.hasFailures {
		return Transition{Result: events.PhaseResultFailure, Next: events.PhaseCleanup}
	}
	return Transition{Result: events.PhaseResultContinue, Next: events.PhaseCleanup}
}

// Resume, Fail, and Cancel target the phase as a whole rather than a
// single outstanding handler: Execute may have several handlers
// waiting at once, so there is no single current entry to resolve.
// Each call represents one of those outstanding suspensions settling.

func (p *ExecutePhase) Resume() (Transition, error) {
	p.waitingCount--
	return p.finish(), nil
}

func (p *ExecutePhase) Fail() (Transition, error) {
	p.waitingCount--
	p.hasFailures = true
	return p.finish(), nil
}

// Cancel resolves one outstanding suspension as Cancelled. Per
// spec.md §5, cancellation delivered through a suspend handle forces
// the whole phase to the Cleanup detour immediately rather than
// waiting for any other still-outstanding handlers.
func (p *ExecutePhase) Cancel() (Transition, error) {
	p.waitingCount--
	p.cancelled = true
	return Transition{Result: events.PhaseResultCancelled, Next: events.PhaseCleanup}, nil
}
