package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// Root errors shared by all extensions. Codes below 100 are reserved for
// this package. Extensions register their own, see Register.
var (
	ErrUnauthorized = Register(2, "unauthorized")
	ErrNotFound     = Register(3, "not found")
	ErrMsg          = Register(4, "invalid message")
	ErrModel        = Register(5, "invalid model")

	// ErrDuplicate is returned when a unique key or index is already taken.
	ErrDuplicate = Register(6, "duplicate")

	// ErrHuman marks a code path that correct code never reaches.
	ErrHuman = Register(7, "coding error")

	ErrImmutable = Register(8, "cannot be modified")
	ErrEmpty     = Register(9, "value is empty")

	// ErrState is returned when an object does not allow the requested
	// transition, for example funding a completed swap.
	ErrState = Register(10, "invalid state")

	ErrType     = Register(11, "invalid type")
	ErrAmount   = Register(13, "invalid amount")
	ErrInput    = Register(14, "invalid input")
	ErrOverflow = Register(16, "an operation cannot be completed due to value overflow")

	// ErrMetadata is returned when the metadata of a model or a message
	// is missing or invalid.
	ErrMetadata = Register(18, "invalid metadata")

	// ErrDatabase is returned when the underlying store fails.
	ErrDatabase = Register(19, "database")

	// ErrPanic is only produced by Recover. Its message is always redacted.
	ErrPanic = Register(111222, "panic")
)

// registry holds every code handed out by Register. Code 1 belongs to
// errors that were never registered and cannot be claimed.
var registry = map[uint32]*Error{1: nil}

// Register declares a new root error. It panics if the code is taken, so
// it must only be called while the program starts, typically from a
// package level var block.
func Register(code uint32, description string) *Error {
	if prev, ok := registry[code]; ok {
		desc := "reserved"
		if prev != nil {
			desc = prev.desc
		}
		panic(fmt.Sprintf("error code %d is already registered: %q", code, desc))
	}
	e := &Error{code: code, desc: description}
	registry[code] = e
	return e
}

// Error is a root error. Every error returned at runtime should wrap one of
// them, which lets callers test the kind with Is and lets the application
// decide what can be shown to a client.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string    { return e.desc }
func (e Error) ABCICode() uint32 { return e.code }

// New is a shortcut for Wrap(e, description).
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

// Newf is New with formatting.
func (e *Error) Newf(format string, args ...interface{}) error {
	return Wrap(e, fmt.Sprintf(format, args...))
}

// Is returns true if err is this root error or wraps it. A combined error
// (see Append) matches if any member does. A nil kind matches only nil
// errors, including typed nil pointers.
func (e *Error) Is(err error) bool {
	if e == nil {
		return isNilErr(err)
	}
	return visit(err, func(cur error) bool { return cur == error(e) })
}

// visit calls fn for err and everything it wraps, stopping at the first
// true result. Wrapped errors are followed through Cause and combined
// errors through every member.
func visit(err error, fn func(error) bool) bool {
	for err != nil {
		if fn(err) {
			return true
		}
		switch e := err.(type) {
		case unpacker:
			for _, member := range e.Unpack() {
				if visit(member, fn) {
					return true
				}
			}
			return false
		case causer:
			err = e.Cause()
		default:
			return false
		}
	}
	return false
}

// Wrap adds description to err and records a stack trace unless err
// already carries one. It returns nil for a nil err.
//
// Errors that do not wrap a registered root error are treated as internal
// and are redacted before they leave the application.
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	return &wrappedError{parent: err, msg: description}
}

// Wrapf is Wrap with formatting.
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

type wrappedError struct {
	msg    string
	parent error
}

func (e *wrappedError) Error() string { return e.msg + ": " + e.parent.Error() }
func (e *wrappedError) Cause() error  { return e.parent }

// Format prints the stack trace of the innermost error for %+v.
func (e *wrappedError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%s: %+v", e.msg, e.parent)
		return
	}
	fmt.Fprint(s, e.Error())
}

// Recover turns a panic into an ErrPanic assigned to *err. It must be
// called with defer.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

// WithType annotates err with the Go type of obj.
func WithType(err error, obj interface{}) error {
	return Wrapf(err, "%T", obj)
}

type causer interface {
	Cause() error
}

type unpacker interface {
	Unpack() []error
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// stackTrace returns the outermost stack trace found along the cause chain.
func stackTrace(err error) errors.StackTrace {
	for err != nil {
		if st, ok := err.(stackTracer); ok {
			return st.StackTrace()
		}
		c, ok := err.(causer)
		if !ok {
			return nil
		}
		err = c.Cause()
	}
	return nil
}

// isNilErr also catches typed nil pointers stored in an error interface.
func isNilErr(err error) bool {
	if err == nil {
		return true
	}
	val := reflect.ValueOf(err)
	return val.Kind() == reflect.Ptr && val.IsNil()
}
