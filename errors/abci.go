package errors

import (
	"fmt"
	"reflect"
)

const (
	// SuccessABCICode is the code of a response that carries no error.
	SuccessABCICode = 0

	// Errors that do not wrap a registered root error share this code and,
	// outside of debug mode, this log.
	internalABCICode uint32 = 1
	internalABCILog         = "internal error"
)

// ABCIInfo returns the code and log of an ABCI response reporting err.
//
// An error wrapping a registered root error is reported with the code of
// that root error. Any other error is an internal error. The message of an
// internal error or a recovered panic is only revealed in debug mode, which
// also adds the stack trace.
func ABCIInfo(err error, debug bool) (uint32, string) {
	if errIsNil(err) {
		return SuccessABCICode, ""
	}
	code := abciCode(err)
	switch {
	case debug:
		return code, fmt.Sprintf("%+v", err)
	case code == internalABCICode:
		return code, internalABCILog
	case code == ErrPanic.code:
		return code, ErrPanic.desc
	default:
		return code, err.Error()
	}
}

// ABCIError reverses ABCIInfo. The returned error wraps the root error
// registered with the code, so it can be tested with Is by a client.
func ABCIError(code uint32, log string) error {
	if root := codes[code]; root != nil {
		return Wrap(root, log)
	}
	return Wrap(fmt.Errorf("code %d", code), log)
}

type coder interface {
	ABCICode() uint32
}

// abciCode returns the code of the first error in the chain of err that
// carries one.
func abciCode(err error) uint32 {
	for !errIsNil(err) {
		if c, ok := err.(coder); ok {
			return c.ABCICode()
		}
		cause, ok := err.(causer)
		if !ok {
			break
		}
		err = cause.Cause()
	}
	return internalABCICode
}

// errIsNil returns true for a nil error, including a nil pointer stored in
// a non nil error interface.
func errIsNil(err error) bool {
	if err == nil {
		return true
	}
	val := reflect.ValueOf(err)
	return val.Kind() == reflect.Ptr && val.IsNil()
}
