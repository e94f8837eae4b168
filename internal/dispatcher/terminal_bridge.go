package dispatcher

import "github.com/ChuLiYu/eventphase/internal/terminal"

func runCompletedTerminal(flight *inFlight, hasFailures bool) {
	terminal.RunCompleted(flight.ctx, flight.success, flight.failure, flight.complete, hasFailures)
}

func runCancelledTerminal(flight *inFlight) {
	terminal.RunCancelled(flight.ctx, flight.cancel, flight.complete)
}
