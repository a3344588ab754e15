package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// causer is implemented by errors that wrap another error.
type causer interface {
	Cause() error
}

// unpacker is implemented by errors that group several errors.
type unpacker interface {
	Unpack() []error
}

// Wrap returns err extended with a description. A nil err results in nil,
// so the result of a call can be wrapped and returned unconditionally.
//
// A stack trace is recorded by the innermost wrap only. An error that does
// not carry an ABCI code, like any stdlib error, is reported as an internal
// error.
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	return &wrappedError{msg: description, parent: err}
}

// Wrapf is Wrap with the description built by fmt.Sprintf.
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithType wraps err with the name of the type of obj.
func WithType(err error, obj interface{}) error {
	return Wrap(err, fmt.Sprintf("%T", obj))
}

// Recover turns a panic into an ErrPanic assigned to err. It must be called
// directly by defer.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

type wrappedError struct {
	msg    string
	parent error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.parent.Error()
}

func (e *wrappedError) Cause() error {
	return e.parent
}

// Format supports the following verbs
//
//	%s  the error message
//	%v  the error message followed by the [file:line] the error was created at
//	%+v the error message followed by the full stack trace
func (e *wrappedError) Format(s fmt.State, verb rune) {
	if verb != 'v' {
		fmt.Fprint(s, e.Error())
		return
	}
	stack := stackTrace(e)
	switch {
	case s.Flag('+'):
		fmt.Fprintf(s, "%s\n%+v", e.Error(), stack)
	case len(stack) == 0:
		fmt.Fprint(s, e.Error())
	default:
		fmt.Fprintf(s, "%s [%v]", e.Error(), stack[0])
	}
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// stackTrace returns the outermost stack trace found in the chain of err.
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
