package workflow

// Trigger represents an event that can cause a state transition
type Trigger string

// Review triggers
const (
	TriggerAccept Trigger = "ACCEPT"
	TriggerRefuse Trigger = "REFUSE"
)

// Submission triggers
const (
	TriggerSubmit   Trigger = "SUBMIT"
	TriggerReject   Trigger = "REJECT"
	TriggerSend     Trigger = "SEND"
	TriggerComplete Trigger = "COMPLETE"
	TriggerFail     Trigger = "FAIL"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
