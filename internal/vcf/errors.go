package vcf

import (
	"errors"
	"fmt"
)

// Kind classifies a failure. Kind values are themselves errors so callers can
// write errors.Is(err, vcf.InvalidProperty).
type Kind int

const (
	OK Kind = iota
	InvalidFile
	InvalidCard
	InvalidProperty
	InvalidDateTime
	WriteError
	OtherError
)

// String returns the human readable name of the kind.
func (k Kind) String() string {
	switch k {
	case OK:
		return "OK"
	case InvalidFile:
		return "Invalid File"
	case InvalidCard:
		return "Invalid Card"
	case InvalidProperty:
		return "Invalid Property"
	case InvalidDateTime:
		return "Invalid DateTime"
	case WriteError:
		return "Write Error"
	case OtherError:
		return "Other Error"
	default:
		return "Invalid error code"
	}
}

func (k Kind) Error() string { return k.String() }

// Error is returned by every operation of the package on failure.
type Error struct {
	Kind   Kind
	Line   int    // 1-based logical line, 0 when not tied to a line
	Reason string // short technical description
	Err    error  // underlying cause, if any
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Line > 0 {
		msg = fmt.Sprintf("%s (line %d)", msg, e.Line)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is the Kind of e.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the Kind carried by err. A nil error is OK and any error
// that does not come from this package is OtherError.
func KindOf(err error) Kind {
	if err == nil {
		return OK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var k Kind
	if errors.As(err, &k) {
		return k
	}
	return OtherError
}

func newError(kind Kind, line int, reason string) *Error {
	return &Error{Kind: kind, Line: line, Reason: reason}
}

func wrapError(kind Kind, reason string, err error) *Error {
	return &Error{Kind: kind, Reason: reason, Err: err}
}
