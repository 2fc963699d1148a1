package conf

import (
	"errors"
	"log/slog"
	"strings"
)

// Predefined errors (sentinel values).
//
// Errors produced by the engine are derived from these with [Error.Wrap] and
// [Error.With], and still match them with [errors.Is].
var (
	ErrUnknownContext = NewError("unknown context")
	ErrUnmatchedEnd   = NewError("end without matching begin")
	ErrUnclosed       = NewError("block not closed before end of input")
	ErrUnbalanced     = NewError("unbalanced parentheses")
	ErrMaxDepth       = NewError("maximum nesting depth exceeded")
	ErrArity          = NewError("wrong number of arguments")
	ErrOpenFile       = NewError("cannot open file")
	ErrRead           = NewError("cannot read file")
	ErrNotFound       = NewError("file not found")
	ErrMagic          = NewError("missing or invalid header")
	ErrNewerVersion   = NewError("file written for a newer version")
	ErrTempFile       = NewError("cannot create temporary file")
	ErrNoOutput       = NewError("command produced no output")
	ErrExec           = NewError("cannot execute command")
	ErrLineTooLong    = NewError("line too long")
	ErrNotAllowed     = NewError("not allowed in null context")
	ErrTruncated      = NewError("expansion truncated")
	ErrBackquote      = NewError("backquote execution not enabled")
	ErrNoFile         = NewError("no file named")
	ErrPreproc        = NewError("preprocessing failed")
	ErrDirScan        = NewError("cannot scan directory")
	ErrEval           = NewError("expression evaluation failed")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	err   error       // Wrapped error (for errors.Unwrap)
	msg   string
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
//
// The message has the form "<msg>: <cause> [key=value ...]", omitting any
// part that is not set.
func (e *Error) Error() string {
	part := make([]string, 0, 3)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	s := strings.Join(part, ": ")

	if len(e.attrs) > 0 {
		kv := make([]string, len(e.attrs))
		for i, a := range e.attrs {
			kv[i] = a.String()
		}

		s += " [" + strings.Join(kv, " ") + "]"
	}

	return s
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an Error with the same message, so that
// errors derived from a sentinel with Wrap or With still match it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg != "" && t.msg == e.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}
