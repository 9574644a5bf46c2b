package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/workflow"
	"github.com/garyjia/billed/internal/domain/bills"
	"github.com/garyjia/billed/internal/domain/entity"
)

// DashboardGroup is one collapsible status queue of the dashboard
type DashboardGroup struct {
	Status entity.BillStatus
	Label  string
	Count  int
	Open   bool
	Bills  []*entity.Bill // empty while the group is closed
}

// DashboardReview holds the admin dashboard state: the bill collection,
// the open/closed state of each status group and the bill shown in the detail form.
type DashboardReview struct {
	store  port.BillStore
	logger Logger

	mu       sync.Mutex
	bills    []*entity.Bill
	loadErr  error
	open     map[entity.BillStatus]bool
	selected string
	inFlight map[string]bool
}

// NewDashboardReview creates a dashboard with every group closed and no selection
func NewDashboardReview(store port.BillStore, logger Logger) *DashboardReview {
	return &DashboardReview{
		store:    store,
		logger:   logger,
		open:     make(map[entity.BillStatus]bool),
		inFlight: make(map[string]bool),
	}
}

// Load rebuilds the bill collection from the bill store.
// A read failure is kept for ErrorMessage and returned.
func (d *DashboardReview) Load(ctx context.Context) error {
	list, err := d.store.List(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()

	if err != nil {
		d.loadErr = err
		d.logger.Error("Failed to list bills", "error", err)
		return fmt.Errorf("list bills: %w", err)
	}

	d.loadErr = nil
	d.bills = list
	if d.selected != "" && d.find(d.selected) == nil {
		d.selected = ""
	}
	return nil
}

// ErrorMessage returns the display message of the last load failure, or ""
func (d *DashboardReview) ErrorMessage() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return ErrorMessage(d.loadErr)
}

// Counts returns the number of bills per status
func (d *DashboardReview) Counts() map[entity.BillStatus]int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return bills.CountByStatus(d.bills)
}

// ToggleGroup flips the open state of a status group and returns the new state.
// Other groups are not affected. Unknown statuses are ignored.
func (d *DashboardReview) ToggleGroup(status entity.BillStatus) bool {
	if !status.IsValid() {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.open[status] = !d.open[status]
	return d.open[status]
}

// IsGroupOpen reports whether a status group is expanded
func (d *DashboardReview) IsGroupOpen(status entity.BillStatus) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open[status]
}

// VisibleBills returns the rows of an open group, latest first.
// A closed group shows no rows.
func (d *DashboardReview) VisibleBills(status entity.BillStatus) []*entity.Bill {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.visible(status)
}

func (d *DashboardReview) visible(status entity.BillStatus) []*entity.Bill {
	if !d.open[status] {
		return []*entity.Bill{}
	}
	rows := bills.FilterByStatus(d.bills, status)
	bills.SortByDate(rows)
	return rows
}

// Groups returns the three status queues in display order
func (d *DashboardReview) Groups() []DashboardGroup {
	d.mu.Lock()
	defer d.mu.Unlock()

	groups := make([]DashboardGroup, 0, len(entity.BillStatuses))
	for _, status := range entity.BillStatuses {
		groups = append(groups, DashboardGroup{
			Status: status,
			Label:  bills.FormatStatus(status),
			Count:  len(bills.FilterByStatus(d.bills, status)),
			Open:   d.open[status],
			Bills:  d.visible(status),
		})
	}
	return groups
}

// SelectBill shows a bill in the detail form.
// Selecting the bill already shown goes back to the placeholder.
func (d *DashboardReview) SelectBill(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.find(id) == nil {
		return fmt.Errorf("%w: %s", ErrBillNotFound, id)
	}

	if d.selected == id {
		d.selected = ""
		return nil
	}
	d.selected = id
	return nil
}

// Selected returns a copy of the bill shown in the detail form, or nil
func (d *DashboardReview) Selected() *entity.Bill {
	d.mu.Lock()
	defer d.mu.Unlock()

	bill := d.find(d.selected)
	if bill == nil {
		return nil
	}
	cp := *bill
	return &cp
}

// ShowsPlaceholder reports whether the large icon replaces the detail form
func (d *DashboardReview) ShowsPlaceholder() bool {
	return d.Selected() == nil
}

// Accept marks the selected bill as accepted
func (d *DashboardReview) Accept(ctx context.Context, commentAdmin string) error {
	return d.transition(ctx, entity.StatusAccepted, commentAdmin)
}

// Refuse marks the selected bill as refused
func (d *DashboardReview) Refuse(ctx context.Context, commentAdmin string) error {
	return d.transition(ctx, entity.StatusRefused, commentAdmin)
}

// transition clears the selection, then persists the new status and reloads.
// A blank comment keeps the existing admin comment.
func (d *DashboardReview) transition(ctx context.Context, status entity.BillStatus, commentAdmin string) error {
	d.mu.Lock()
	current := d.find(d.selected)
	if current == nil {
		d.mu.Unlock()
		return ErrNoBillSelected
	}
	if d.inFlight[current.ID] {
		d.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrTransitionInFlight, current.ID)
	}

	if err := checkTransition(ctx, current.Status, status); err != nil {
		d.mu.Unlock()
		return err
	}

	updated := *current
	updated.Status = status
	if commentAdmin != "" {
		updated.CommentAdmin = commentAdmin
	}

	d.selected = ""
	d.inFlight[updated.ID] = true
	d.mu.Unlock()

	_, err := d.store.Update(ctx, &updated)

	d.mu.Lock()
	delete(d.inFlight, updated.ID)
	d.mu.Unlock()

	if err != nil {
		d.logger.Error("Failed to update bill", "id", updated.ID, "status", status, "error", err)
		return fmt.Errorf("update bill %s: %w", updated.ID, err)
	}

	d.logger.Info("Bill reviewed", "id", updated.ID, "status", status)
	return d.Load(ctx)
}

// find returns the bill with the given id; callers hold d.mu
func (d *DashboardReview) find(id string) *entity.Bill {
	if id == "" {
		return nil
	}
	for _, bill := range d.bills {
		if bill != nil && bill.ID == id {
			return bill
		}
	}
	return nil
}

// checkTransition runs the bill state machine from current towards target
func checkTransition(ctx context.Context, current, target entity.BillStatus) error {
	machine, err := workflow.BuildBillStateMachine(current)
	if err != nil {
		return err
	}
	trigger, err := workflow.TriggerForStatus(target)
	if err != nil {
		return err
	}
	return machine.Fire(ctx, trigger)
}
