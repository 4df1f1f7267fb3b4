package model

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed classification of backend failures. The retry
// controller branches on kind; callers never need to match error text.
type ErrorKind int

const (
	// KindRetryable marks transient provider failures: rate limiting,
	// 5xx responses, network errors.
	KindRetryable ErrorKind = iota
	// KindContentFiltered marks a terminal content-safety failure where the
	// backend returned no usable content. Adapters normally convert this
	// into a diagnostic assistant message instead of returning an error.
	KindContentFiltered
	// KindTruncated marks token-limit truncation. Not retryable; the caller
	// must reconfigure token budgets.
	KindTruncated
	// KindConfig marks configuration errors (unknown provider, rejected
	// parameters, authentication failures). Raised before or instead of a
	// successful network exchange; never retried.
	KindConfig
)

// String returns the kind name used in logs and error text.
func (k ErrorKind) String() string {
	switch k {
	case KindRetryable:
		return "retryable"
	case KindContentFiltered:
		return "content_filtered"
	case KindTruncated:
		return "truncated"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// Error is the tagged failure type returned by backend adapters.
type Error struct {
	Kind     ErrorKind
	Provider string
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s model error [%s]: %s", e.Provider, e.Kind, e.Message)
	}
	return fmt.Sprintf("model error [%s]: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error { return e.Cause }

// NewError constructs a classified backend error.
func NewError(kind ErrorKind, provider, message string, cause error) *Error {
	return &Error{Kind: kind, Provider: provider, Message: message, Cause: cause}
}

// Retryable reports whether err is a transient backend failure worth
// retrying. Unclassified errors are treated as non-retryable.
func Retryable(err error) bool {
	var me *Error
	if errors.As(err, &me) {
		return me.Kind == KindRetryable
	}
	return false
}

// KindOf extracts the classification of err. ok is false when err carries no
// *Error in its chain.
func KindOf(err error) (ErrorKind, bool) {
	var me *Error
	if errors.As(err, &me) {
		return me.Kind, true
	}
	return 0, false
}
