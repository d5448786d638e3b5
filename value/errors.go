package value

import (
	"errors"
	"fmt"
)

// Failure tags the outcome of applying a value type to a value.
type Failure uint8

const (
	// OK means the value was accepted.
	OK Failure = iota
	// KindMismatch means the value is of the wrong primitive category.
	KindMismatch
	// ValueViolation means the value has the right category but fails a rule.
	ValueViolation
)

func (f Failure) String() string {
	switch f {
	case OK:
		return "ok"
	case KindMismatch:
		return "kind_mismatch"
	case ValueViolation:
		return "value_violation"
	}
	return fmt.Sprintf("failure(%d)", uint8(f))
}

// Sentinels matched by (*Error).Is.
var (
	ErrKindMismatch   = errors.New("value: kind mismatch")
	ErrValueViolation = errors.New("value: value violation")
)

// Error reports a rejected value. Keyword and Pointer are filled in by
// schema validators; plain value types leave them empty.
type Error struct {
	Failure Failure
	Keyword string
	Pointer string
	Value   any
	Reason  string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Failure.String()
	if e.Keyword != "" {
		msg += " (" + e.Keyword + ")"
	}
	if e.Pointer != "" {
		msg += " at " + e.Pointer
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrKindMismatch:
		return e.Failure == KindMismatch
	case ErrValueViolation:
		return e.Failure == ValueViolation
	}
	return false
}

func (e *Error) Unwrap() error { return e.Err }

// Mismatch returns a KindMismatch error for v.
func Mismatch(v any, reason string) *Error {
	return &Error{Failure: KindMismatch, Value: v, Reason: reason}
}

// Violation returns a ValueViolation error for v.
func Violation(v any, reason string) *Error {
	return &Error{Failure: ValueViolation, Value: v, Reason: reason}
}

// FailureOf returns the failure tag carried by err. A nil error is OK.
// Errors that are not value rejections report ok == false and must be
// propagated rather than treated as a rejection.
func FailureOf(err error) (f Failure, ok bool) {
	if err == nil {
		return OK, true
	}
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Failure, true
	}
	return OK, false
}

// Rejected reports whether err is a value rejection (kind mismatch or value
// violation) as opposed to an operational error.
func Rejected(err error) bool {
	f, ok := FailureOf(err)
	return ok && f != OK
}
