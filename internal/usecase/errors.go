package usecase

import "fmt"

type ErrorCode string

const (
	ErrorUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrorInvalidInput ErrorCode = "INVALID_INPUT"
	ErrorRateLimited  ErrorCode = "RATE_LIMITED"
	ErrorUpstream     ErrorCode = "UPSTREAM_ERROR"
	ErrorInternal     ErrorCode = "INTERNAL_ERROR"
)

// Error is the typed failure returned by every operation. Message is safe to
// show to the caller; Err carries the underlying cause for logs.
type Error struct {
	Code    ErrorCode
	Reason  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	head := fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	if e.Message != "" {
		head += ": " + e.Message
	}
	if e.Err == nil || e.Message == e.Err.Error() {
		return head
	}
	return fmt.Sprintf("%s: %v", head, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason, message string, err error) *Error {
	return &Error{Code: code, Reason: reason, Message: message, Err: err}
}

// ErrUnauthorized is returned before any provider call when the caller has
// no active session.
func ErrUnauthorized() *Error {
	return newError(ErrorUnauthorized, "no_session", "Unauthorized", nil)
}
