package bills

import (
	"sort"

	"github.com/garyjia/billed/internal/domain/entity"
)

// SortByDate orders bills in place from the latest to the earliest date.
//
// Dates are compared as raw strings, so the result is chronological only when
// every date uses the same zero-padded YYYY-MM-DD layout. There is no tie-break:
// bills sharing the same date string keep no guaranteed relative order.
// A nil or empty slice is left untouched. Nil entries sink to the end.
func SortByDate(bills []*entity.Bill) {
	if len(bills) == 0 {
		return
	}
	sort.Slice(bills, func(i, j int) bool {
		a, b := bills[i], bills[j]
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.Date > b.Date
	})
}
