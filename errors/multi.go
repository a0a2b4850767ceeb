package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored.
//
// If no errors or only nil values are given, nil is returned.
//
// If only one non nil error is given, that error is returned unmodified.
//
// Errors created with Append are flattened, so appending a combined error
// never results in a nested structure.
func Append(errs ...error) error {
	var res multiErr
	for _, e := range errs {
		if isNilErr(e) {
			continue
		}
		if m, ok := e.(multiErr); ok {
			res = append(res, m...)
		} else {
			res = append(res, e)
		}
	}

	switch len(res) {
	case 0:
		return nil
	case 1:
		return res[0]
	default:
		return res
	}
}

// multiErr represents a group of errors. It is always flat and it never
// contains nil values.
type multiErr []error

func (errs multiErr) Error() string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, "* "+e.Error())
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s\n", len(errs), strings.Join(msgs, "\n\t"))
}

// Unpack returns all member errors.
func (errs multiErr) Unpack() []error {
	return errs
}

// ABCICode returns the code of the first member, consistent with the fail
// fast approach of message validation.
func (errs multiErr) ABCICode() uint32 {
	return abciCode(errs[0])
}

var _ unpacker = multiErr(nil)
