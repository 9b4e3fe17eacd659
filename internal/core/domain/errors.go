package domain

import (
	"context"
	"errors"
	"fmt"
)

// Domain errors represent query failures.
// Typed errors below wrap them so callers can match with errors.Is.
var (
	// ErrMalformedLocator indicates a locator that cannot be parsed,
	// including invalid control values such as limit=-1.
	ErrMalformedLocator = errors.New("malformed locator")

	// ErrUnknownScheme indicates no adapter is registered for a scheme.
	ErrUnknownScheme = errors.New("unknown scheme")

	// ErrUnsupportedOperator indicates a filter operator neither the engine
	// nor the adapter understands. The whole query fails.
	ErrUnsupportedOperator = errors.New("unsupported operator")

	// ErrAdapterExecution indicates the adapter failed (I/O, timeout, refused).
	ErrAdapterExecution = errors.New("adapter execution failed")

	// ErrElementNotFound indicates the addressed element does not exist.
	ErrElementNotFound = errors.New("element not found")

	// ErrFilterNotApplicable indicates filters were given for a single-object
	// result. Filters are never silently dropped.
	ErrFilterNotApplicable = errors.New("filters require an item sequence")

	// ErrDuplicateScheme indicates two adapters claim the same scheme.
	ErrDuplicateScheme = errors.New("duplicate scheme")

	// ErrInvalidInput indicates malformed or invalid input outside a locator.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")
)

// LocatorError describes why a locator failed to parse.
type LocatorError struct {
	Locator string
	Reason  string
}

func (e *LocatorError) Error() string {
	return fmt.Sprintf("malformed locator %q: %s", e.Locator, e.Reason)
}

// Unwrap returns ErrMalformedLocator.
func (e *LocatorError) Unwrap() error {
	return ErrMalformedLocator
}

// UnknownSchemeError names the scheme that has no adapter.
type UnknownSchemeError struct {
	Scheme string
}

func (e *UnknownSchemeError) Error() string {
	return fmt.Sprintf("unknown scheme %q", e.Scheme)
}

// Unwrap returns ErrUnknownScheme.
func (e *UnknownSchemeError) Unwrap() error {
	return ErrUnknownScheme
}

// UnsupportedOperatorError names the offending condition.
type UnsupportedOperatorError struct {
	Field    string
	Operator OperatorKind
}

func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("unsupported operator %q on field %q", e.Operator, e.Field)
}

// Unwrap returns ErrUnsupportedOperator.
func (e *UnsupportedOperatorError) Unwrap() error {
	return ErrUnsupportedOperator
}

// AdapterExecutionError wraps a failure raised inside an adapter.
type AdapterExecutionError struct {
	Scheme  string
	Locator string
	Timeout bool
	Err     error
}

func (e *AdapterExecutionError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s adapter timed out on %q: %v", e.Scheme, e.Locator, e.Err)
	}
	return fmt.Sprintf("%s adapter failed on %q: %v", e.Scheme, e.Locator, e.Err)
}

// Unwrap exposes both the sentinel and the cause.
func (e *AdapterExecutionError) Unwrap() []error {
	return []error{ErrAdapterExecution, e.Err}
}

// NewAdapterExecutionError wraps err, flagging deadline expiry as a timeout.
func NewAdapterExecutionError(scheme, locator string, err error) *AdapterExecutionError {
	return &AdapterExecutionError{
		Scheme:  scheme,
		Locator: locator,
		Timeout: errors.Is(err, context.DeadlineExceeded),
		Err:     err,
	}
}

// Exit codes reported by the CLI.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// Error kinds carried in error records.
const (
	KindMalformedLocator    = "malformed_locator"
	KindUnknownScheme       = "unknown_scheme"
	KindUnsupportedOperator = "unsupported_operator"
	KindFilterNotApplicable = "filter_not_applicable"
	KindElementNotFound     = "element_not_found"
	KindTimeout             = "timeout"
	KindAdapterError        = "adapter_error"
	KindInternal            = "internal"
)

// ErrorRecord is the structured form of a failed locator.
type ErrorRecord struct {
	Locator  string `json:"locator"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
	ExitCode int    `json:"exitCode"`
}

// ClassifyError converts an error into a record with kind and exit code.
func ClassifyError(locator string, err error) ErrorRecord {
	rec := ErrorRecord{Locator: locator, Message: err.Error(), ExitCode: ExitFailure}

	var execErr *AdapterExecutionError
	switch {
	case errors.Is(err, ErrMalformedLocator):
		rec.Kind, rec.ExitCode = KindMalformedLocator, ExitUsage
	case errors.Is(err, ErrUnknownScheme):
		rec.Kind, rec.ExitCode = KindUnknownScheme, ExitUsage
	case errors.Is(err, ErrUnsupportedOperator):
		rec.Kind, rec.ExitCode = KindUnsupportedOperator, ExitUsage
	case errors.Is(err, ErrFilterNotApplicable):
		rec.Kind, rec.ExitCode = KindFilterNotApplicable, ExitUsage
	case errors.Is(err, ErrElementNotFound):
		rec.Kind = KindElementNotFound
	case errors.As(err, &execErr) && execErr.Timeout:
		rec.Kind = KindTimeout
	case errors.Is(err, ErrAdapterExecution):
		rec.Kind = KindAdapterError
	default:
		rec.Kind = KindInternal
	}

	return rec
}
