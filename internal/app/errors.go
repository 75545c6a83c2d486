package app

import "fmt"

// ErrConnection is returned when a TAP service cannot be reached or does
// not answer the TAP_SCHEMA probe.
type ErrConnection struct {
	Endpoint string
	Cause    error
}

func (e *ErrConnection) Error() string {
	if e.Endpoint == "" {
		return fmt.Sprintf("connect: %v", e.Cause)
	}
	return fmt.Sprintf("connect %s: %v", e.Endpoint, e.Cause)
}

func (e *ErrConnection) Unwrap() error { return e.Cause }

// ErrQuery wraps a failed ADQL query. Query holds the text that was sent.
type ErrQuery struct {
	Query string
	Cause error
}

func (e *ErrQuery) Error() string {
	return fmt.Sprintf("adql query: %v", e.Cause)
}

func (e *ErrQuery) Unwrap() error { return e.Cause }

// ErrConfig wraps failures reading or writing ~/.vizier/config.yaml.
type ErrConfig struct {
	Cause error
}

func (e *ErrConfig) Error() string {
	return fmt.Sprintf("config: %v", e.Cause)
}

func (e *ErrConfig) Unwrap() error { return e.Cause }
