package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies workflow failures for messaging and exit-code policy.
type ErrorKind string

const (
	KindInvalidInput       ErrorKind = "invalid_input"
	KindPreconditionFailed ErrorKind = "precondition_failed"
	KindConflict           ErrorKind = "conflict"
	KindExternalTool       ErrorKind = "external_tool"
	KindCancelled          ErrorKind = "cancelled"
)

// ErrCancelled signals that the user quit an interactive prompt. Callers
// treat it as a normal control path, not a failure.
var ErrCancelled = &Error{Kind: KindCancelled, Msg: "cancelled"}

// Error is the workflow error type. Msg names the violated rule in one
// sentence; Remedy, when set, names the exact command that unblocks the user.
type Error struct {
	Kind   ErrorKind
	Msg    string
	Remedy string
	Err    error
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

// WithRemedy attaches a suggested remedial command and returns the error.
func (e *Error) WithRemedy(format string, args ...any) *Error {
	e.Remedy = fmt.Sprintf(format, args...)
	return e
}

// WithCause attaches the underlying cause and returns the error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// NewInvalidInput creates an invalid-input error.
func NewInvalidInput(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Msg: fmt.Sprintf(format, args...)}
}

// NewPreconditionFailed creates a precondition-failed error.
func NewPreconditionFailed(format string, args ...any) *Error {
	return &Error{Kind: KindPreconditionFailed, Msg: fmt.Sprintf(format, args...)}
}

// NewConflict creates a conflict error for already-existing tags or branches
// and for diverged histories.
func NewConflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// NewExternalTool wraps a failure reported by a delegated external command.
// The cause carries the tool's own error text and is never retried.
func NewExternalTool(msg string, err error) *Error {
	return &Error{Kind: KindExternalTool, Msg: msg, Err: err}
}

// KindOf returns the workflow error kind of err, or "" for foreign errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsCancelled reports whether err represents a user cancellation.
func IsCancelled(err error) bool {
	return KindOf(err) == KindCancelled
}

// RemedyOf returns the suggested remedial command attached to err, if any.
func RemedyOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Remedy
	}
	return ""
}

// ExitCode maps an error to the process exit code: success and cancellation
// exit zero, every failure exits one.
func ExitCode(err error) int {
	if err == nil || IsCancelled(err) {
		return 0
	}
	return 1
}
