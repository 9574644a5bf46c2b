package bills

import "github.com/garyjia/billed/internal/domain/entity"

// FilterByStatus returns the bills whose status equals status, in input order.
// An unknown status yields an empty slice.
func FilterByStatus(bills []*entity.Bill, status entity.BillStatus) []*entity.Bill {
	filtered := make([]*entity.Bill, 0, len(bills))
	for _, bill := range bills {
		if bill != nil && bill.Status == status {
			filtered = append(filtered, bill)
		}
	}
	return filtered
}

// CountByStatus returns the number of bills per known status
func CountByStatus(bills []*entity.Bill) map[entity.BillStatus]int {
	counts := make(map[entity.BillStatus]int, len(entity.BillStatuses))
	for _, status := range entity.BillStatuses {
		counts[status] = len(FilterByStatus(bills, status))
	}
	return counts
}
