package billapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/infrastructure/resilience"
)

// HTTPStatusError is a non-2xx answer of the bill API.
// It unwraps to the matching port error kind.
type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Message    string
}

func (e *HTTPStatusError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("bill api %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("bill api %s status: %s: %s", e.Operation, e.Status, strings.TrimSpace(e.Message))
}

// Unwrap maps the status code to a port error kind
func (e *HTTPStatusError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return port.ErrNotFound
	case e.StatusCode == http.StatusUnauthorized:
		return port.ErrUnauthorized
	case e.StatusCode == http.StatusForbidden:
		return port.ErrForbidden
	case e.StatusCode == http.StatusConflict:
		return port.ErrConflict
	case e.StatusCode == http.StatusBadRequest:
		return port.ErrBadRequest
	case e.StatusCode >= http.StatusInternalServerError:
		return port.ErrServer
	default:
		return nil
	}
}

func classify(err error) resilience.Classification {
	if err == nil {
		return resilience.Classification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.Classification{Retryable: false, RecordFailure: false}
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		if isRetryableStatus(statusErr.StatusCode) {
			return resilience.Classification{Retryable: true, RecordFailure: true}
		}
		return resilience.Classification{Retryable: false, RecordFailure: false}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.Classification{Retryable: true, RecordFailure: true}
	}

	return resilience.Classification{Retryable: false, RecordFailure: true}
}

// classifyWrite keeps breaker accounting of classify but never retries.
// A lost answer to a create or update may hide a write the server already applied.
func classifyWrite(err error) resilience.Classification {
	c := classify(err)
	c.Retryable = false
	return c
}

func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
