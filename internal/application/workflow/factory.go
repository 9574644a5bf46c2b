package workflow

import (
	"fmt"

	"github.com/garyjia/billed/internal/domain/entity"
	domainwf "github.com/garyjia/billed/internal/domain/workflow"
)

// BuildBillStateMachine creates a state machine for the review of a bill.
// accepted and refused are terminal: nothing leads back to pending.
func BuildBillStateMachine(status entity.BillStatus) (domainwf.StateMachine, error) {
	initial := domainwf.State(status)
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", domainwf.ErrInvalidState, status)
	}

	builder := domainwf.NewBuilder(domainwf.BillStates...)

	builder.Configure(domainwf.StatePending).
		Permit(domainwf.TriggerAccept, domainwf.StateAccepted).
		Permit(domainwf.TriggerRefuse, domainwf.StateRefused)

	return builder.Build(initial), nil
}

// BuildSubmissionStateMachine creates the state machine of one new bill submission
func BuildSubmissionStateMachine() domainwf.StateMachine {
	builder := domainwf.NewBuilder(domainwf.SubmissionStates...)

	builder.Configure(domainwf.StateEditing).
		Permit(domainwf.TriggerSubmit, domainwf.StateValidating)

	builder.Configure(domainwf.StateValidating).
		Permit(domainwf.TriggerReject, domainwf.StateEditing).
		Permit(domainwf.TriggerSend, domainwf.StateSubmitting)

	builder.Configure(domainwf.StateSubmitting).
		Permit(domainwf.TriggerComplete, domainwf.StateSucceeded).
		Permit(domainwf.TriggerFail, domainwf.StateFailed)

	// succeeded and failed are terminal

	return builder.Build(domainwf.StateEditing)
}

// TriggerForStatus maps a target review status to its trigger
func TriggerForStatus(status entity.BillStatus) (domainwf.Trigger, error) {
	switch status {
	case entity.StatusAccepted:
		return domainwf.TriggerAccept, nil
	case entity.StatusRefused:
		return domainwf.TriggerRefuse, nil
	default:
		return "", fmt.Errorf("%w: no transition leads to %q", domainwf.ErrInvalidTransition, status)
	}
}
