/*
Package orm stores typed models in a key value store.

The state is split into buckets, each one holding models of a single type
under a common key prefix. A bucket may declare secondary indexes, unique or
not, that are kept in sync with every write. Buckets, indexes and sequences
can be exposed as query handlers.
*/
package orm

import (
	"reflect"

	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/errors"
)

// Object is a model together with the key it is stored under.
type Object interface {
	Key() []byte
	SetKey([]byte)
	Cloneable
	// Validate must fail for anything that cannot be written.
	Validate() error
	Value() tokendist.Persistent
}

// Cloneable creates an empty Object of the same type that a stored value
// can be loaded into.
type Cloneable interface {
	Clone() Object
}

// CloneableData is a model that can be wrapped by SimpleObj.
type CloneableData interface {
	tokendist.Persistent
	Validate() error
	Copy() CloneableData
}

// SimpleObj is the Object implementation used by all buckets.
type SimpleObj struct {
	key   []byte
	value CloneableData
}

var _ Object = (*SimpleObj)(nil)

// NewSimpleObj returns value bound to key.
func NewSimpleObj(key []byte, value CloneableData) *SimpleObj {
	return &SimpleObj{key: key, value: value}
}

func (o SimpleObj) Key() []byte {
	return o.key
}

func (o *SimpleObj) SetKey(key []byte) {
	o.key = key
}

func (o SimpleObj) Value() tokendist.Persistent {
	return o.value
}

// Validate requires both the key and the value. The value validates itself.
func (o SimpleObj) Validate() error {
	switch {
	case len(o.key) == 0:
		return errors.Field("Key", errors.ErrEmpty, "missing key")
	case o.value == nil:
		return errors.Field("Value", errors.ErrEmpty, "missing value")
	}
	return o.value.Validate()
}

// Clone returns an object with a copy of the key and a zero value of the
// same type as the value of o.
func (o *SimpleObj) Clone() Object {
	zero := reflect.New(reflect.TypeOf(o.value).Elem()).Interface().(CloneableData)
	var key []byte
	if len(o.key) != 0 {
		key = append(key, o.key...)
	}
	return &SimpleObj{key: key, value: zero}
}
