package errors

import (
	"fmt"
)

// Root errors shared by all extensions. Codes below 100 belong to this
// package.
var (
	// ErrUnauthorized means the transaction lacks a required signature.
	ErrUnauthorized = Register(2, "unauthorized")

	// ErrNotFound means the referenced entity does not exist.
	ErrNotFound = Register(3, "not found")

	// ErrMsg means a message failed validation.
	ErrMsg = Register(4, "invalid message")

	// ErrModel means an entity failed validation and cannot be stored.
	ErrModel = Register(5, "invalid model")

	// ErrDuplicate means a unique key or index value is already taken.
	ErrDuplicate = Register(6, "duplicate")

	// ErrHuman is a programming error. It should never be returned by
	// correctly wired code.
	ErrHuman = Register(7, "coding error")

	// ErrImmutable means an attempt to modify a value that is fixed.
	ErrImmutable = Register(8, "cannot be modified")

	// ErrEmpty means a required value is missing.
	ErrEmpty = Register(9, "value is empty")

	// ErrState means an entity is in a state that does not allow the
	// operation.
	ErrState = Register(10, "invalid state")

	// ErrType means a value is not of the expected type.
	ErrType = Register(11, "invalid type")

	// ErrAmount means an amount is invalid, for example negative or of the
	// wrong asset.
	ErrAmount = Register(13, "invalid amount")

	// ErrInput is a general malformed input.
	ErrInput = Register(14, "invalid input")

	// ErrOverflow means the result does not fit the numeric type.
	ErrOverflow = Register(16, "an operation cannot be completed due to value overflow")

	// ErrDatabase means the underlying storage failed.
	ErrDatabase = Register(17, "database")

	// ErrNetwork is a transport failure. Only clients return it.
	ErrNetwork = Register(18, "network")

	// ErrPanic marks a recovered panic. Its details are never exposed
	// outside of debug mode.
	ErrPanic = Register(111222, "panic")
)

// codes holds every registered root error by its ABCI code. Code 1 is taken
// by the generic internal error and can never be registered.
var codes = map[uint32]*Error{
	internalABCICode: nil,
}

// Register declares a new root error. It panics when the code is already
// taken, so it must only be called while the program initializes, usually
// from a package level variable declaration.
func Register(code uint32, description string) *Error {
	if prev, ok := codes[code]; ok {
		desc := "internal error"
		if prev != nil {
			desc = prev.desc
		}
		panic(fmt.Sprintf("error with code %d is already registered: %q", code, desc))
	}
	e := &Error{code: code, desc: description}
	codes[code] = e
	return e
}

// Error is a root error. Every error returned by a handler should wrap one
// of them, so that the client receives a stable code it can act on.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string {
	return e.desc
}

// ABCICode returns the code this error was registered with.
func (e Error) ABCICode() uint32 {
	return e.code
}

// New is a shortcut for Wrap(e, description).
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

// Is returns true if err is this root error or wraps it. An error group
// matches if any of its members does. A nil kind matches only a nil error.
func (e *Error) Is(err error) bool {
	if e == nil {
		return errIsNil(err)
	}
	for err != nil {
		if err == e {
			return true
		}
		switch v := err.(type) {
		case unpacker:
			for _, member := range v.Unpack() {
				if e.Is(member) {
					return true
				}
			}
			return false
		case causer:
			err = v.Cause()
		default:
			return false
		}
	}
	return false
}
