package bills

import (
	"fmt"
	"time"

	"github.com/garyjia/billed/internal/domain/entity"
)

// DateLayout is the layout bill dates are expected to follow
const DateLayout = "2006-01-02"

var frenchMonths = [...]string{
	"Jan", "Fév", "Mar", "Avr", "Mai", "Jui",
	"Jui", "Aoû", "Sep", "Oct", "Nov", "Déc",
}

// FormatDate renders a YYYY-MM-DD date as "4 Avr. 04".
// On error callers fall back to the raw value.
func FormatDate(raw string) (string, error) {
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return "", fmt.Errorf("format date %q: %w", raw, err)
	}
	return fmt.Sprintf("%d %s. %02d", t.Day(), frenchMonths[t.Month()-1], t.Year()%100), nil
}

// FormatStatus returns the display label of a status
func FormatStatus(status entity.BillStatus) string {
	switch status {
	case entity.StatusPending:
		return "En attente"
	case entity.StatusAccepted:
		return "Accepté"
	case entity.StatusRefused:
		return "Refusé"
	default:
		return string(status)
	}
}
