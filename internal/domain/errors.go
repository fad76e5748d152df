package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies completion-side failures.
type ErrorKind string

const (
	ErrConfigMissing    ErrorKind = "config_missing"
	ErrAuthFailed       ErrorKind = "auth_failed"
	ErrResourceNotFound ErrorKind = "resource_not_found"
	ErrRateLimited      ErrorKind = "rate_limited"
	ErrBadRequest       ErrorKind = "bad_request"
	ErrUnknown          ErrorKind = "unknown"
)

// CompletionError wraps a completion-service failure with its classification.
// Status is the remote HTTP status, 0 when the request never left the process.
type CompletionError struct {
	Kind   ErrorKind
	Status int
	Msg    string
}

func (e *CompletionError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("completion %s (%d): %s", e.Kind, e.Status, e.Msg)
	}
	return fmt.Sprintf("completion %s: %s", e.Kind, e.Msg)
}

// KindOf extracts the ErrorKind from an error chain, defaulting to ErrUnknown.
func KindOf(err error) ErrorKind {
	var ce *CompletionError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ErrUnknown
}

// DeliveryError is a gateway send failure. It carries the remote status and
// body unchanged; the relay never retries delivery.
type DeliveryError struct {
	Status int
	Body   string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("gateway delivery failed (%d): %s", e.Status, e.Body)
}
