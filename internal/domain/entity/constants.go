package entity

// BillStatus is the review status of a bill
type BillStatus string

// Status constants for Bill
const (
	StatusPending  BillStatus = "pending"
	StatusAccepted BillStatus = "accepted"
	StatusRefused  BillStatus = "refused"
)

// BillStatuses lists statuses in dashboard group order
var BillStatuses = []BillStatus{StatusPending, StatusAccepted, StatusRefused}

// String returns the string representation of the status
func (s BillStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is one of the known statuses
func (s BillStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRefused:
		return true
	}
	return false
}

// Expense type constants for Bill.Type
const (
	ExpenseTypeTransport     = "Transports"
	ExpenseTypeRestaurant    = "Restaurants et bars"
	ExpenseTypeAccommodation = "Hôtel et logement"
	ExpenseTypeOnline        = "Services en ligne"
	ExpenseTypeIT            = "IT et électronique"
	ExpenseTypeEquipment     = "Equipement et matériel"
	ExpenseTypeOffice        = "Fournitures de bureau"
)

// ExpenseTypes is the fixed category list, in form order
var ExpenseTypes = []string{
	ExpenseTypeTransport,
	ExpenseTypeRestaurant,
	ExpenseTypeAccommodation,
	ExpenseTypeOnline,
	ExpenseTypeIT,
	ExpenseTypeEquipment,
	ExpenseTypeOffice,
}

// IsExpenseType reports whether t belongs to ExpenseTypes
func IsExpenseType(t string) bool {
	for _, et := range ExpenseTypes {
		if et == t {
			return true
		}
	}
	return false
}

// DefaultPct is applied when a bill is submitted without a pct value
const DefaultPct = 20

// User type constants
const (
	UserTypeEmployee = "Employee"
	UserTypeAdmin    = "Admin"
)
