package service

import (
	"errors"
	"fmt"

	"github.com/garyjia/billed/internal/application/port"
)

var (
	// ErrInvalidFile is returned when the receipt extension is not accepted
	ErrInvalidFile = errors.New("invalid receipt file")

	// ErrInvalidBill is returned when submitted bill fields cannot be used
	ErrInvalidBill = errors.New("invalid bill")

	// ErrSubmissionClosed is returned when a finished submission is used again
	ErrSubmissionClosed = errors.New("submission already completed")

	// ErrNoBillSelected is returned when a review action has no bill to act on
	ErrNoBillSelected = errors.New("no bill selected")

	// ErrTransitionInFlight is returned while an update of the same bill is pending
	ErrTransitionInFlight = errors.New("bill transition already in flight")

	// ErrBillNotFound is returned when a bill id is unknown
	ErrBillNotFound = fmt.Errorf("bill %w", port.ErrNotFound)

	// ErrForbidden is returned when the session may not perform the action
	ErrForbidden = fmt.Errorf("action %w", port.ErrForbidden)

	// ErrInvalidCredentials is returned on a failed login
	ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", port.ErrUnauthorized)

	// ErrEmailExists is returned when signing up with a known email
	ErrEmailExists = fmt.Errorf("email already registered: %w", port.ErrConflict)
)

// ErrorMessage renders a read failure for display.
// Not-found and server failures get the short "Erreur <code>" form.
func ErrorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, port.ErrNotFound):
		return "Erreur 404"
	case errors.Is(err, port.ErrServer):
		return "Erreur 500"
	default:
		return err.Error()
	}
}
