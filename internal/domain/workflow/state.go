package workflow

// State represents a state of a bill or of a bill submission
type State string

// Bill lifecycle states. The values match entity.BillStatus.
const (
	StatePending  State = "pending"
	StateAccepted State = "accepted"
	StateRefused  State = "refused"
)

// Submission lifecycle states
const (
	StateEditing    State = "editing"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// BillStates are the states of a bill under review
var BillStates = []State{StatePending, StateAccepted, StateRefused}

// SubmissionStates are the states of a new bill submission
var SubmissionStates = []State{StateEditing, StateValidating, StateSubmitting, StateSucceeded, StateFailed}

var terminalStates = map[State]bool{
	StateAccepted:  true,
	StateRefused:   true,
	StateSucceeded: true,
	StateFailed:    true,
}

// IsTerminal returns true if the state is a terminal state (no further transitions allowed)
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state belongs to one of the known lifecycles
func (s State) IsValid() bool {
	return contains(BillStates, s) || contains(SubmissionStates, s)
}

func contains(states []State, s State) bool {
	for _, st := range states {
		if st == s {
			return true
		}
	}
	return false
}
