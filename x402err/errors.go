// Package x402err defines the error taxonomy shared by every package in
// this module. Each error carries a Kind so callers can map faults to a
// transport-level outcome without parsing messages.
package x402err

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error.
type Kind int

const (
	// KindInvalidInput marks malformed caller or client input, detected
	// before any network call.
	KindInvalidInput Kind = iota + 1
	// KindVerificationFailed marks a well-formed payment that fails a
	// requirement.
	KindVerificationFailed
	// KindFacilitator marks a facilitator that could not be reached or
	// answered with a protocol-level error. It never implies the payment
	// was invalid.
	KindFacilitator
	// KindInternal marks a defect inside this module, not a user-facing
	// condition.
	KindInternal
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindVerificationFailed:
		return "verification_failed"
	case KindFacilitator:
		return "facilitator_error"
	case KindInternal:
		return "internal_error"
	}
	return "unknown"
}

// Error is a classified error.
type Error struct {
	kind Kind
	err  error
}

// New creates a classified error.
func New(kind Kind, err error) error {
	return &Error{kind: kind, err: err}
}

// Newf creates a classified error from a format string.
func Newf(kind Kind, format string, args ...any) error {
	return &Error{kind: kind, err: fmt.Errorf(format, args...)}
}

// InvalidInput creates a KindInvalidInput error.
func InvalidInput(format string, args ...any) error {
	return Newf(KindInvalidInput, format, args...)
}

// Facilitator creates a KindFacilitator error wrapping cause.
func Facilitator(cause error, format string, args ...any) error {
	return &Error{kind: KindFacilitator, err: fmt.Errorf(format+": %w", append(args, cause)...)}
}

// Internal creates a KindInternal error.
func Internal(format string, args ...any) error {
	return Newf(KindInternal, format, args...)
}

// Error returns the message of the wrapped error.
func (e *Error) Error() string {
	return e.err.Error()
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.err
}

// Kind returns the classification of the error.
func (e *Error) Kind() Kind {
	return e.kind
}

// KindOf extracts the Kind of err. Unclassified errors report
// KindInternal, since an unclassified fault escaping this module is a
// defect.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindInternal
}

// Status returns the HTTP status a host should answer with for err.
func Status(err error) int {
	switch KindOf(err) {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindVerificationFailed:
		return http.StatusPaymentRequired
	case KindFacilitator:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
