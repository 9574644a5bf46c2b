package event

import "github.com/garyjia/billed/internal/domain/entity"

// Type identifies the type of domain event
type Type string

const (
	TypeBillCreated  Type = "bill.created"
	TypeBillAccepted Type = "bill.accepted"
	TypeBillRefused  Type = "bill.refused"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeBillCreated, TypeBillAccepted, TypeBillRefused:
		return true
	default:
		return false
	}
}

// TypeForStatus returns the event published when a bill reaches status.
// Pending has no review event.
func TypeForStatus(status entity.BillStatus) (Type, bool) {
	switch status {
	case entity.StatusAccepted:
		return TypeBillAccepted, true
	case entity.StatusRefused:
		return TypeBillRefused, true
	default:
		return "", false
	}
}
