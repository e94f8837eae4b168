package phase

import "github.com/ChuLiYu/eventphase/pkg/events"

// ConfigurePhase performs resource allocation and reservation that
// may legitimately be asynchronous. Individual handler failures do
// not abort the phase; a Cancelled result detours straight to
// Cleanup (spec.md §4.5).
type ConfigurePhase struct {
	base
}

// NewConfigure builds a Configure phase state over entries.
func NewConfigure(ctx events.Context, entries []*events.HandlerEntry, onExec func(events.PhaseTag)) *ConfigurePhase {
	return &ConfigurePhase{base: newBase(events.PhaseConfigure, ctx, entries, onExec)}
}

// Process runs handlers in order; a Waiting result suspends the
// phase unless a Resume/Fail/Cancel signal already arrived for it
// (see the early-resume tolerance in §4.5).
func (p *ConfigurePhase) Process() Transition {
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
				// A resume signal had already arrived (count was -1):
				// treat the retroactive suspension as already resumed.
				p.results[entry] = events.ResultSuccess
				continue
			}
			p.current = entry
			return Transition{Result: events.PhaseResultWaiting, Self: true}

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

// finish routes to Execute on the normal path. The one exception is
// every recorded result being Failure: Cleanup still must run once
// Configure has started, but with nothing usable configured there is
// no point entering Execute (spec.md §4.5, §4.8).
func (p *ConfigurePhase) finish() Transition {
	if p.allFailed() {
		return Transition{Result: events.PhaseResultFailure, Next: events.PhaseCleanup}
	}
	return Transition{Result: events.PhaseResultContinue, Next: events.PhaseExecute}
}

// Resume decrements waiting_count. A value that remains negative
// means more resumes have arrived than handlers have suspended so
// far; the phase stays marked Waiting until a producing handler
// catches up.
func (p *ConfigurePhase) Resume() (Transition, error) {
	p.waitingCount--
	if p.waitingCount < 0 {
		return Transition{Result: events.PhaseResultWaiting, Self: true}, nil
	}
	if p.current != nil {
		p.results[p.current] = events.ResultSuccess
		p.current = nil
	}
	return p.Process(), nil
}

// Fail is equivalent to the suspended handler having returned
// Failure.
func (p *ConfigurePhase) Fail() (Transition, error) {
	p.waitingCount--
	if p.waitingCount < 0 {
		return Transition{Result: events.PhaseResultWaiting, Self: true}, nil
	}
	if p.current != nil {
		p.results[p.current] = events.ResultFailure
		p.hasFailures = true
		p.current = nil
	}
	return p.Process(), nil
}

// Cancel is equivalent to the suspended handler having returned
// Cancelled: it forces the Cleanup detour immediately.
func (p *ConfigurePhase) Cancel() (Transition, error) {
	p.waitingCount--
	if p.current != nil {
		p.results[p.current] = events.ResultCancelled
		p.current = nil
	}
	p.cancelled = true
	return Transition{Result: events.PhaseResultCancelled, Next: events.PhaseCleanup}, nil
}
