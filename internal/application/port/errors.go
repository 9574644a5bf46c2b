package port

import "errors"

// Transport-level error kinds returned by BillStore implementations.
// Implementations wrap their own errors so callers can use errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrServer       = errors.New("server error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrBadRequest   = errors.New("bad request")
)
