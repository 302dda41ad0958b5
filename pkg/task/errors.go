package task

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("task not found")
	ErrStorage    = errors.New("storage error")
	ErrParse      = errors.New("parse error")
)

// Error carries one of the sentinel kinds above plus context.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Kind.Error()
	if e.Msg != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the kind and the underlying cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func invalidf(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Msg: fmt.Sprintf(format, args...)}
}

func parseErr(msg string, err error) error {
	return &Error{Kind: ErrParse, Msg: msg, Err: err}
}

// NotFound reports a missing task id.
func NotFound(id int64) error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf("id %d", id)}
}

// Storage wraps a store-level failure.
func Storage(op string, err error) error {
	return &Error{Kind: ErrStorage, Msg: op, Err: err}
}

// Invalid builds a validation error outside of Normalize (e.g. illegal status transitions).
func Invalid(format string, args ...any) error {
	return invalidf(format, args...)
}
