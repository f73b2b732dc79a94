package rest

import (
	"errors"
	"fmt"
)

// Kind classifies a failed API operation.
type Kind string

const (
	// KindCaller indicates invalid input supplied by the calling code.
	// Detected before any network activity; no request was issued.
	KindCaller Kind = "caller"

	// KindTransport indicates the request could not reach the server or no
	// usable response was obtained (connection failure, DNS failure, an
	// unreadable or undecodable response body).
	KindTransport Kind = "transport"

	// KindStatus indicates the server answered with a non-2xx status.
	KindStatus Kind = "status"
)

// Error is the error type returned by all client operations. Exactly one of
// the value and error slots of an operation is non-nil; callers must check
// the error before using the value.
type Error struct {
	Kind Kind

	// StatusCode is the HTTP status, set for KindStatus only.
	StatusCode int

	// Message is the human-readable failure description. For KindStatus it is
	// the best-effort `message` field extracted from the response body, which
	// may be empty.
	Message string

	// Method and URL describe the request that failed. Empty for caller
	// errors raised before a request was built.
	Method string
	URL    string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("error response %d while requesting %s %s: %s",
			e.StatusCode, e.Method, e.URL, e.Message)
	case KindTransport:
		if e.Err != nil {
			return fmt.Sprintf("an error occurred while requesting %s %s: %v",
				e.Method, e.URL, e.Err)
		}
		return fmt.Sprintf("an error occurred while requesting %s %s: %s",
			e.Method, e.URL, e.Message)
	default:
		return fmt.Sprintf("caller error: %s", e.Message)
	}
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewCallerError builds a KindCaller error from a format string.
func NewCallerError(format string, args ...any) *Error {
	return &Error{Kind: KindCaller, Message: fmt.Sprintf(format, args...)}
}

// IsCaller reports whether err is a caller error.
func IsCaller(err error) bool { return isKind(err, KindCaller) }

// IsTransport reports whether err is a transport-level failure.
func IsTransport(err error) bool { return isKind(err, KindTransport) }

// IsStatus reports whether err is a non-2xx response error.
func IsStatus(err error) bool { return isKind(err, KindStatus) }

func isKind(err error, kind Kind) bool {
	var restErr *Error
	return errors.As(err, &restErr) && restErr.Kind == kind
}
