package service

import (
	"context"
	"fmt"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/bills"
	"github.com/garyjia/billed/internal/domain/entity"
)

// BillRow is a bill prepared for the employee bills table
type BillRow struct {
	Bill   *entity.Bill
	Date   string
	Status string
}

// BillsList builds the employee bills table
type BillsList struct {
	store  port.BillStore
	logger Logger
}

// NewBillsList creates a BillsList
func NewBillsList(store port.BillStore, logger Logger) *BillsList {
	return &BillsList{store: store, logger: logger}
}

// Load fetches the bills, orders them on their raw dates and formats each row.
// A date that cannot be parsed is shown as-is and logged with its bill.
func (l *BillsList) Load(ctx context.Context) ([]BillRow, error) {
	list, err := l.store.List(ctx)
	if err != nil {
		l.logger.Error("Failed to list bills", "error", err)
		return nil, fmt.Errorf("list bills: %w", err)
	}

	bills.SortByDate(list)

	rows := make([]BillRow, 0, len(list))
	for _, bill := range list {
		if bill == nil {
			continue
		}
		date, err := bills.FormatDate(bill.Date)
		if err != nil {
			l.logger.Warn("Unparseable bill date", "bill", bill, "error", err)
			date = bill.Date
		}
		rows = append(rows, BillRow{
			Bill:   bill,
			Date:   date,
			Status: bills.FormatStatus(bill.Status),
		})
	}
	return rows, nil
}
