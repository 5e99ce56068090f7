// Package muxerr defines the mux daemon's error-kind taxonomy so the
// dispatcher can convert any handler failure into Err{message} uniformly.
package muxerr

import "fmt"

// Kind classifies why an operation failed. Kinds are a design-level
// concept; the wire protocol only ever carries Err{message}.
type Kind string

const (
	NotFound      Kind = "not_found"
	Exists        Kind = "exists"
	InvalidTarget Kind = "invalid_target"
	InvalidArgv   Kind = "invalid_argv"
	PtyIO         Kind = "pty_io"
	Timeout       Kind = "timeout"
	Capture       Kind = "capture"
)

// Error is a kinded error carrying a human-readable message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a kinded error with a message.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf builds a kinded error with a formatted message.
func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds a kinded error that wraps an underlying OS/library error.
func Wrap(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the Kind from err, or "" if err is not a *Error.
func KindOf(err error) Kind {
	var e *Error
	if ok := asError(err, &e); ok {
		return e.Kind
	}
	return ""
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
