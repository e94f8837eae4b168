package phase

import "github.com/ChuLiYu/eventphase/pkg/events"

// ValidatePhase runs synchronous, fast checks. Any Failure or
// Cancelled short-circuits the remaining handlers; a Waiting result
// is tolerated per-handler but downgrades the whole phase to Failure
// once the loop completes, since Validate must stay synchronous
// (spec.md §4.4, §9 Open Question 2).
type ValidatePhase struct {
	base
}

// NewValidate builds a Validate phase state over entries, which must
// already be in priority order (see registry.Registry.Snapshot).
func NewValidate(ctx events.Context, entries []*events.HandlerEntry, onExec func(events.PhaseTag)) *ValidatePhase {
	p := &ValidatePhase{base: newBase(events.PhaseValidate, ctx, entries, onExec)}
	return p
}

// Process runs every remaining handler in order until one fails,
// cancels, or the list is exhausted.
func (p *ValidatePhase) Process() Transition {
	hadWaiting := false

	for p.hasMore() {
		entry, result := p.runOne()
		p.results[entry] = result

		switch result {
		case events.ResultSuccess:
			// continue
		case events.ResultWaiting:
			hadWaiting = true
			// keep processing subsequent handlers
		case events.ResultCancelled:
			p.cancelled = true
			return Transition{Result: events.PhaseResultCancelled}
		default: // ResultFailure, ResultUnknown
			p.hasFailures = true
			return Transition{Result: events.PhaseResultFailure}
		}
	}

	if hadWaiting {
		// Validate must be synchronous: a recorded Waiting downgrades
		// the phase to a failure outcome rather than a real suspension.
		// Reporting PhaseResultFailure here (not Waiting) is what keeps
		// the business state from parking the event forever — Validate
		// never implements Resume/Fail/Cancel, so nothing could ever
		// wake it back up.
		p.hasFailures = true
		return Transition{Result: events.PhaseResultFailure}
	}
	return Transition{Result: events.PhaseResultContinue, Next: events.PhaseConfigure}
}

// Resume, Fail, and Cancel are never valid on Validate: it never
// returns Self, so the business state never re-enters it.
func (p *ValidatePhase) Resume() (Transition, error) { return Transition{}, ErrNotSuspended }
func (p *ValidatePhase) Fail() (Transition, error)   { return Transition{}, ErrNotSuspended }
func (p *ValidatePhase) Cancel() (Transition, error) { return Transition{}, ErrNotSuspended }
