package tap

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrColumnCount is wrapped by a DecodeError when a row carries more
// values than the response declares columns.
var ErrColumnCount = errors.New("row has more values than columns")

// TransportError means the HTTP exchange itself did not complete.
type TransportError struct {
	Endpoint string
	Cause    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("tap request to %s failed: %v", e.Endpoint, e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// StatusError means the service answered with a non-2xx status. The body
// of such a response is never parsed.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return "non-success status code: " + status
}

// SchemaError means the response body is not the expected columnar JSON.
type SchemaError struct {
	Reason string
	Cause  error
}

func (e *SchemaError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("unexpected response schema: %s: %v", e.Reason, e.Cause)
	}
	return "unexpected response schema: " + e.Reason
}

func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// DecodeError means a reshaped row could not be decoded into the target
// type. Row is the zero-based index of the offending row.
type DecodeError struct {
	Row   int
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to deserialize row %d: %v", e.Row, e.Cause)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}
