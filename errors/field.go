package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Field attaches the name of the invalid message attribute to err. A nil
// err gives nil, so validations can be chained without branching.
//
// Field names follow the Go struct naming. Elements of a list are addressed
// by their index, for example Receivers.2
func Field(name string, err error, desc string, args ...interface{}) error {
	if errIsNil(err) {
		return nil
	}
	if len(args) != 0 {
		desc = fmt.Sprintf(desc, args...)
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	return &fieldError{name: name, desc: desc, cause: err}
}

// AppendField is Append(errs, Field(name, err, "")).
func AppendField(errs error, name string, err error) error {
	return Append(errs, Field(name, err, ""))
}

type fieldError struct {
	name  string
	desc  string
	cause error
}

func (e *fieldError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "field %q: ", e.name)
	if e.desc != "" {
		b.WriteString(e.desc)
		b.WriteString(": ")
	}
	b.WriteString(e.cause.Error())
	return b.String()
}

func (e *fieldError) Cause() error { return e.cause }

// Field is the name of the invalid attribute.
func (e *fieldError) Field() string { return e.name }

// FieldErrors collects every error attached to the named field, looking
// through wrapped and grouped errors.
func FieldErrors(err error, name string) []error {
	var found []error
	for !errIsNil(err) {
		switch e := err.(type) {
		case *fieldError:
			if e.name == name {
				return append(found, err)
			}
		case unpacker:
			for _, inner := range e.Unpack() {
				found = append(found, FieldErrors(inner, name)...)
			}
			return found
		}
		c, ok := err.(causer)
		if !ok {
			break
		}
		err = c.Cause()
	}
	return found
}

// Append groups errs into a single error, dropping nil values and
// flattening groups. It returns nil when nothing is left and the error
// itself when only one is left.
func Append(errs ...error) error {
	var group multiErr
	for _, e := range errs {
		switch m := e.(type) {
		case multiErr:
			group = append(group, m...)
		default:
			if !errIsNil(e) {
				group = append(group, e)
			}
		}
	}
	if len(group) == 0 {
		return nil
	}
	if len(group) == 1 {
		return group[0]
	}
	return group
}

// multiErr is a group of errors. Its ABCI code is the one of the first
// member.
type multiErr []error

func (m multiErr) Error() string {
	msgs := make([]string, 0, len(m))
	for _, e := range m {
		msgs = append(msgs, e.Error())
	}
	return fmt.Sprintf("%d errors occurred: %s", len(m), strings.Join(msgs, "; "))
}

func (m multiErr) Unpack() []error { return m }

func (m multiErr) ABCICode() uint32 { return abciCode(m[0]) }
