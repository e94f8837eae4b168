package events

// PhaseTag identifies which business phase or terminal listener group a
// handler entry belongs to.
type PhaseTag string

const (
	PhaseValidate  PhaseTag = "validate"
	PhaseConfigure PhaseTag = "configure"
	PhaseExecute   PhaseTag = "execute"
	PhaseCleanup   PhaseTag = "cleanup"

	PhaseSuccessListener  PhaseTag = "success_listener"
	PhaseFailureListener  PhaseTag = "failure_listener"
	PhaseCancelListener   PhaseTag = "cancel_listener"
	PhaseCompleteListener PhaseTag = "complete_listener"
)

// IsBusinessPhase reports whether tag names one of the four phases a
// dispatched event traverses before reaching a terminal state.
func (tag PhaseTag) IsBusinessPhase() bool {
	switch tag {
	case PhaseValidate, PhaseConfigure, PhaseExecute, PhaseCleanup:
		return true
	default:
		return false
	}
}
