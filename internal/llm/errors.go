package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Failure kinds. Callers tell them apart with errors.Is / errors.As.
var (
	ErrNetwork       = errors.New("llm: network error")
	ErrMalformedJSON = errors.New("llm: malformed JSON reply")
	ErrNoChoices     = errors.New("llm: reply has no completion")
	ErrMissingField  = errors.New("llm: reply is missing a required field")
)

// HTTPError is a non-2xx response from the completion endpoint.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	body := e.Body
	if len(body) > 300 {
		body = body[:300] + "..."
	}
	return fmt.Sprintf("llm: http %d: %s", e.StatusCode, body)
}

// Temporary reports whether the status is worth retrying.
func (e *HTTPError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// NetworkError wraps a transport failure so that it matches ErrNetwork
// while keeping the underlying cause.
func NetworkError(err error) error {
	return fmt.Errorf("%w: %w", ErrNetwork, err)
}

// Retryable reports whether a failed request may succeed when repeated:
// network failures, timeouts, 429 and 5xx responses. A cancelled context
// is never retryable.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Temporary()
	}
	if errors.Is(err, ErrNetwork) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
