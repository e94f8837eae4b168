package phase

import "github.com/ChuLiYu/eventphase/pkg/events"

// CleanupPhase always runs, regardless of how the business state
// arrived here, and releases whatever Configure/Execute reserved.
// It shares Execute's non-short-circuiting loop shape, but a
// Cancelled result during Cleanup does not detour anywhere further —
// Cleanup is never re-entered — it simply marks the run cancelled
// and keeps releasing the remaining resources (spec.md §4.7).
type CleanupPhase struct {
	base
}

// NewCleanup builds a Cleanup phase state over entries.
func NewCleanup(ctx events.Context, entries []*events.HandlerEntry, onExec func(events.PhaseTag)) *CleanupPhase {
	return &CleanupPhase{base: newBase(events.PhaseCleanup, ctx, entries, onExec)}
}

func (p *CleanupPhase) Process() Transition {
	for p.hasMore() {
		entry, result := p.runOne()

		switch result {
		case events.ResultCancelled:
			p.results[entry] = events.ResultCancelled
			p.cancelled = true

		case events.ResultWaiting:
			p.waitingCount++
			if p.waitingCount == 0 {
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

// finish reports the phase's settled outcome once no handler is left
// waiting. Next is left empty: Cleanup is the last primary phase, so
// the owning business state — not this phase — decides whether the
// run as a whole lands on Completed or Cancelled.
func (p *CleanupPhase) finish() Transition {
	if p.waitingCount > 0 {
		return Transition{Result: events.PhaseResultWaiting, Self: true}
	}
	if p.cancelled {
		return Transition{Result: events.PhaseResultCancelled}
	}
	if p.hasFailures {
		return Transition{Result: events.PhaseResultFailure}
	}
	return Transition{Result: events.PhaseResultContinue}
}

func (p *CleanupPhase) Resume() (Transition, error) {
	p.waitingCount--
	return p.finish(), nil
}

func (p *CleanupPhase) Fail() (Transition, error) {
	p.waitingCount--
	p.hasFailures = true
	return p.finish(), nil
}

// Cancel marks the run cancelled but, unlike Configure/Execute, does
// not short-circuit: Cleanup keeps settling any other outstanding
// handlers before reporting its final Transition.
func (p *CleanupPhase) Cancel() (Transition, error) {
	p.waitingCount--
	p.cancelled = true
	return p.finish(), nil
}
