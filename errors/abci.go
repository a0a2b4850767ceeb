package errors

import (
	"errors"
)

const (
	// SuccessABCICode is the code of a successful ABCI response.
	SuccessABCICode = 0

	// Errors that do not wrap a registered root error share code 1 and,
	// outside of debug mode, a generic log.
	internalABCICode uint32 = 1
	internalABCILog         = "internal error"
)

// ABCIInfo returns the code and log to put into an ABCI response for err.
// Outside of debug mode the message of an internal error is replaced with
// a generic one.
func ABCIInfo(err error, debug bool) (uint32, string) {
	if isNilErr(err) {
		return SuccessABCICode, ""
	}
	code := abciCode(err)
	if code == internalABCICode && !debug {
		return code, internalABCILog
	}
	return code, err.Error()
}

type coder interface {
	ABCICode() uint32
}

// abciCode follows the cause chain to the first error that knows its code.
// A combined error reports the code of its first member.
func abciCode(err error) uint32 {
	for !isNilErr(err) {
		switch e := err.(type) {
		case unpacker:
			members := e.Unpack()
			if len(members) == 0 {
				return SuccessABCICode
			}
			err = members[0]
		case coder:
			return e.ABCICode()
		case causer:
			err = e.Cause()
		default:
			return internalABCICode
		}
	}
	return SuccessABCICode
}

// Redact replaces every error without a registered code, and every
// recovered panic, with a generic internal error. Registered errors are
// returned unchanged. Debug mode disables redaction.
func Redact(err error, debug bool) error {
	if debug || isNilErr(err) {
		return err
	}
	if ErrPanic.Is(err) || abciCode(err) == internalABCICode {
		return errors.New(internalABCILog)
	}
	return err
}
