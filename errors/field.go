package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Field attaches a field name, and an optional description, to err. It
// returns nil when err is nil, so it can wrap the result of a Validate call
// directly.
//
// Field names follow Go naming. Nested fields use a dotted path such as
// Legs.1.Source, where list elements are addressed by their index.
func Field(name string, err error, description string, args ...interface{}) error {
	if isNilErr(err) {
		return nil
	}
	// A stack is recorded once, at the innermost wrap.
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	if len(args) > 0 {
		description = fmt.Sprintf(description, args...)
	}
	return &fieldError{parent: err, field: name, desc: description}
}

// AppendField adds the field error, if any, to the collected errors.
func AppendField(errs error, name string, fieldErr error) error {
	return Append(errs, Field(name, fieldErr, ""))
}

type fieldError struct {
	parent error
	field  string
	desc   string
}

func (err *fieldError) Error() string {
	if err.desc == "" {
		return fmt.Sprintf("field %q: %s", err.field, err.parent)
	}
	return fmt.Sprintf("field %q: %s: %s", err.field, err.desc, err.parent)
}

func (err *fieldError) Cause() error  { return err.parent }
func (err *fieldError) Field() string { return err.field }

type fielder interface {
	Field() string
}

// FieldErrors walks err and returns every error created for the given field.
// Wrapped errors are followed through their cause and collections built with
// Append are searched element by element.
func FieldErrors(err error, name string) []error {
	if isNilErr(err) {
		return nil
	}
	if f, ok := err.(fielder); ok && f.Field() == name {
		return []error{err}
	}
	switch e := err.(type) {
	case unpacker:
		var res []error
		for _, child := range e.Unpack() {
			res = append(res, FieldErrors(child, name)...)
		}
		return res
	case causer:
		return FieldErrors(e.Cause(), name)
	}
	return nil
}
