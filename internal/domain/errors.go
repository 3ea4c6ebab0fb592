package domain

import "fmt"

// ValidationError reports user input that was rejected before any remote call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DecodeError reports a service response that did not have the expected shape.
type DecodeError struct {
	Endpoint string
	Reason   string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s response: %s", e.Endpoint, e.Reason)
}

// APIError is a non-2xx answer from the device service.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("device service error %d", e.StatusCode)
	}
	return fmt.Sprintf("device service error %d: %s", e.StatusCode, e.Detail)
}
