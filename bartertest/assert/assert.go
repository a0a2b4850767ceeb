// Package assert holds the few assertions the barter tests use everywhere.
// Each failure stops the test immediately.
package assert

import (
	"reflect"

	"github.com/iov-one/barter/errors"
)

// Tester is the part of testing.TB the assertions need.
type Tester interface {
	Helper()
	Fatal(...interface{})
	Fatalf(string, ...interface{})
	Logf(string, ...interface{})
}

// Nil fails unless value is nil. Typed nil pointers, maps and slices
// count as nil.
func Nil(t Tester, value interface{}) {
	t.Helper()
	if !isNil(value) {
		// %+v prints the stack of an error.
		t.Fatalf("want nil, got %+v", value)
	}
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	switch v := reflect.ValueOf(value); v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return v.IsNil()
	}
	return false
}

// Equal fails unless want and got are deeply equal.
func Equal(t Tester, want, got interface{}) {
	t.Helper()
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("not equal\nwant %T %v\n got %T %v", want, want, got, got)
	}
}

// True fails with msg unless cond holds.
func True(t Tester, cond bool, msg string) {
	t.Helper()
	if !cond {
		t.Fatal(msg)
	}
}

// Panics fails unless fn panics.
func Panics(t Tester, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("want panic")
		}
	}()
	fn()
}

// IsErr fails unless got is want or, when want is a root error, got wraps
// it.
func IsErr(t Tester, want, got error) {
	t.Helper()
	if want == got {
		return
	}
	if kind, ok := want.(interface{ Is(error) bool }); ok && kind.Is(got) {
		return
	}
	t.Fatalf("want %q, got %+v", want, got)
}

// FieldError checks the errors recorded for a single field of err. With a
// nil want the field must be clean. Otherwise exactly one error of kind
// want must be found.
func FieldError(t Tester, err error, field string, want *errors.Error) {
	t.Helper()
	found := errors.FieldErrors(err, field)
	for i, e := range found {
		t.Logf("field %s, error %d: %q", field, i+1, e)
	}
	switch {
	case want == nil && len(found) != 0:
		t.Fatalf("want no error for %s, got %d", field, len(found))
	case want == nil:
		return
	case len(found) != 1:
		t.Fatalf("want one error for %s, got %d", field, len(found))
	case !want.Is(found[0]):
		t.Fatalf("want %q for %s, got %q", want, field, found[0])
	}
}
