package port

import (
	"context"

	"github.com/garyjia/billed/internal/domain/entity"
)

// BillStore is the remote bill-storage collaborator seen from the client
type BillStore interface {
	// List returns the bills visible to the current session
	List(ctx context.Context) ([]*entity.Bill, error)

	// Create sends a new bill as a multipart upload
	Create(ctx context.Context, payload *entity.BillPayload) (*entity.CreatedBill, error)

	// Update replaces the fields of an existing bill, identified by bill.ID
	Update(ctx context.Context, bill *entity.Bill) (*entity.Bill, error)
}

// Notifier shows a blocking message to the user
type Notifier interface {
	Alert(message string)
}

// Navigator switches the visible view
type Navigator interface {
	Navigate(route string)
}

// Routes of the client views
const (
	RouteLogin     = "/"
	RouteBills     = "#employee/bills"
	RouteNewBill   = "#employee/bill/new"
	RouteDashboard = "#admin/dashboard"
)
