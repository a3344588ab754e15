// Package assert holds the few assertions shared by the tests of this
// module. Each one stops the test on failure.
package assert

import (
	"reflect"

	"github.com/iov-one/tokendist/errors"
)

// Tester is the part of testing.TB used here.
type Tester interface {
	Helper()
	Fatal(...interface{})
	Fatalf(string, ...interface{})
}

// Nil stops the test unless value is nil, including a typed nil.
func Nil(t Tester, value interface{}) {
	t.Helper()
	if isNil(value) {
		return
	}
	// %+v prints the stack of errors that carry one.
	t.Fatalf("want a nil value, got %+v", value)
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	switch v := reflect.ValueOf(value); v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}

// Equal compares values with reflect.DeepEqual.
func Equal(t Tester, want, got interface{}) {
	t.Helper()
	if reflect.DeepEqual(want, got) {
		return
	}
	t.Fatalf("values not equal\nwant %T %v\n got %T %v", want, want, got, got)
}

// Panics stops the test if fn returns normally.
func Panics(t Tester, fn func()) {
	t.Helper()
	if !panics(fn) {
		t.Fatal("want a panic")
	}
}

func panics(fn func()) (ok bool) {
	defer func() { ok = recover() != nil }()
	fn()
	return false
}

// IsErr stops the test unless got is of kind want. A nil want expects a
// nil got.
func IsErr(t Tester, want *errors.Error, got error) {
	t.Helper()
	if want.Is(got) {
		return
	}
	t.Fatalf("want %v error, got %+v", want, got)
}

// FieldError checks that err holds an error of kind want attached to the
// named field. A nil want checks that the field has no error.
func FieldError(t Tester, err error, field string, want *errors.Error) {
	t.Helper()
	found := errors.FieldErrors(err, field)
	if want == nil {
		if len(found) != 0 {
			t.Fatalf("want no %s error, got %q", field, found)
		}
		return
	}
	for _, e := range found {
		if want.Is(e) {
			return
		}
	}
	t.Fatalf("no %v error found for %s field in %+v", want, field, err)
}
