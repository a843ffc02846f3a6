package services

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers map them to HTTP status codes with errors.Is.
var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
	ErrInternal   = errors.New("internal error")
)

// Error is a service failure with a message safe to show to callers. The
// underlying cause, if any, is kept for logging.
type Error struct {
	Kind  error
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	return e.Msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func badRequest(format string, args ...interface{}) error {
	return &Error{Kind: ErrBadRequest, Msg: fmt.Sprintf(format, args...)}
}

func notFound(cause error, format string, args ...interface{}) error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf(format, args...), Cause: cause}
}

func internal(cause error, format string, args ...interface{}) error {
	return &Error{Kind: ErrInternal, Msg: fmt.Sprintf(format, args...), Cause: cause}
}
