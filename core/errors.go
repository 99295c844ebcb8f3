package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// ConflictError indicates a write that would duplicate an existing row
// (duplicate admin grant, duplicate subscription, duplicate payment
// reference) or an invalid state transition.
type ConflictError struct {
	Err error
}

func NewConflictError(err error) error {
	return &ConflictError{err}
}

func (err ConflictError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// UpstreamError wraps a failure from an external collaborator (object
// storage, payment gateway, text generation). Reason carries the upstream's
// own classification for user messaging.
type UpstreamError struct {
	Service string
	Reason  string // e.g. "rate_limited", "invalid_credentials", "quota_exceeded"
	Err     error
}

func NewUpstreamError(service, reason string, err error) error {
	return &UpstreamError{Service: service, Reason: reason, Err: err}
}

func (err UpstreamError) Error() string {
	msg := err.Service + " service failed"
	if err.Reason != "" {
		msg += ": " + err.Reason
	}
	return msg
}

func (err UpstreamError) Unwrap() error { return err.Err }

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
