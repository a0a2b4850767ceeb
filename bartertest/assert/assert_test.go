package assert

import (
	"fmt"
	"testing"

	"github.com/iov-one/barter/errors"
)

// recorder implements Tester and remembers whether a check failed. Fatal
// does not stop the goroutine, the assertions return right after it.
type recorder struct {
	failed bool
}

func (r *recorder) Helper()                       {}
func (r *recorder) Logf(string, ...interface{})   {}
func (r *recorder) Fatal(...interface{})          { r.failed = true }
func (r *recorder) Fatalf(string, ...interface{}) { r.failed = true }

func TestAssertions(t *testing.T) {
	var nilMap map[string]int
	fieldErr := errors.Append(
		errors.Field("Owner", errors.ErrInput, ""),
		errors.Field("Owner", errors.ErrEmpty, ""),
		errors.Field("Class", errors.ErrEmpty, ""),
	)

	cases := map[string]struct {
		check    func(Tester)
		wantFail bool
	}{
		"nil":                 {check: func(t Tester) { Nil(t, nil) }},
		"typed nil":           {check: func(t Tester) { Nil(t, (*errors.Error)(nil)) }},
		"nil map":             {check: func(t Tester) { Nil(t, nilMap) }},
		"not nil":             {check: func(t Tester) { Nil(t, 0) }, wantFail: true},
		"equal":               {check: func(t Tester) { Equal(t, []byte("a"), []byte("a")) }},
		"not equal":           {check: func(t Tester) { Equal(t, 1, int64(1)) }, wantFail: true},
		"true":                {check: func(t Tester) { True(t, true, "") }},
		"false":               {check: func(t Tester) { True(t, false, "") }, wantFail: true},
		"panics":              {check: func(t Tester) { Panics(t, func() { panic(1) }) }},
		"does not panic":      {check: func(t Tester) { Panics(t, func() {}) }, wantFail: true},
		"same error":          {check: func(t Tester) { IsErr(t, errors.ErrEmpty, errors.ErrEmpty) }},
		"both nil":            {check: func(t Tester) { IsErr(t, nil, nil) }},
		"wrapped error":       {check: func(t Tester) { IsErr(t, errors.ErrEmpty, errors.Wrap(errors.ErrEmpty, "x")) }},
		"unexpected error":    {check: func(t Tester) { IsErr(t, nil, errors.ErrEmpty) }, wantFail: true},
		"foreign error":       {check: func(t Tester) { IsErr(t, errors.ErrEmpty, fmt.Errorf("empty")) }, wantFail: true},
		"single field error":  {check: func(t Tester) { FieldError(t, fieldErr, "Class", errors.ErrEmpty) }},
		"wrong field kind":    {check: func(t Tester) { FieldError(t, fieldErr, "Class", errors.ErrInput) }, wantFail: true},
		"two errors on field": {check: func(t Tester) { FieldError(t, fieldErr, "Owner", errors.ErrInput) }, wantFail: true},
		"clean field":         {check: func(t Tester) { FieldError(t, fieldErr, "Payer", nil) }},
		"field not clean":     {check: func(t Tester) { FieldError(t, fieldErr, "Class", nil) }, wantFail: true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r := &recorder{}
			tc.check(r)
			if r.failed != tc.wantFail {
				t.Fatalf("want failed=%v, got %v", tc.wantFail, r.failed)
			}
		})
	}
}
