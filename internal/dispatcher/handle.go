package dispatcher

import (
	"sync"

	"github.com/ChuLiYu/eventphase/pkg/events"
)

// SuspendHandle is the external control surface produced whenever a
// dispatch (or a prior resume/fail/cancel) leaves the event suspended
// (spec.md §6). Execute may have several handlers concurrently
// waiting, so the same handle is called once per resolving handler;
// it is only retired once the underlying Business State leaves
// StateResultWaiting.
type SuspendHandle struct {
	d       *Dispatcher
	eventID events.EventID

	mu       sync.Mutex
	resolved bool
}

// Resume signals that the awaited operation succeeded.
func (h *SuspendHandle) Resume() (events.Outcome, error) {
	return h.settle(func(flight *inFlight) (events.StateResult, error) {
		return flight.state.Resume()
	})
}

// Fail signals that the awaited operation failed. Equivalent to the
// suspended handler having returned Failure (spec.md §7).
func (h *SuspendHandle) Fail() (events.Outcome, error) {
	return h.settle(func(flight *inFlight) (events.StateResult, error) {
		return flight.state.Fail()
	})
}

// Cancel signals that the awaited operation was cancelled. Equivalent
// to the suspended handler having returned Cancelled.
func (h *SuspendHandle) Cancel() (events.Outcome, error) {
	return h.settle(func(flight *inFlight) (events.StateResult, error) {
		return flight.state.Cancel()
	})
}

func (h *SuspendHandle) settle(signal func(*inFlight) (events.StateResult, error)) (events.Outcome, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.resolved {
		return "", newEventError(ErrAlreadyResolved, h.eventID)
	}

	outcome, err := h.d.signalEvent(h.eventID, signal)
	if err != nil {
		return "", err
	}
	if outcome != events.OutcomeSuspended {
		h.resolved = true
	}
	return outcome, nil
}
