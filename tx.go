package tokendist

import (
	"reflect"

	"github.com/iov-one/tokendist/errors"
)

// Msg is a request for a state transition, like creating a distributor. It
// carries no authentication, that information lives in the Tx around it.
type Msg interface {
	Persistent

	// Path routes the message to its handler. It is alphanumeric and may
	// contain "_", "-" and "/".
	Path() string

	// Validate checks everything that does not need the state.
	Validate() error
}

// Marshaller serializes to binary. It may validate the data first.
type Marshaller interface {
	Marshal() ([]byte, error)
}

// Persistent is a Marshaller that can also be decoded. Unmarshal almost
// always needs a pointer receiver.
type Persistent interface {
	Marshaller
	Unmarshal([]byte) error
}

// Tx is what a client sends to the chain: a single message together with
// whatever the decorators need, for example signatures.
type Tx interface {
	Persistent
	GetMsg() (Msg, error)
}

// GetPath returns the path of the message of tx, or "(missing)".
func GetPath(tx Tx) string {
	msg, err := tx.GetMsg()
	if err == nil && msg != nil {
		return msg.Path()
	}
	return "(missing)"
}

// TxDecoder decodes a transaction as received from tendermint.
type TxDecoder func(txBytes []byte) (Tx, error)

// LoadMsg copies the message of tx into destination and validates it. The
// destination must point to the message type carried by the transaction.
//
//	var msg CreateMsg
//	if err := LoadMsg(tx, &msg); err != nil { ... }
func LoadMsg(tx Tx, destination interface{}) error {
	msg, err := tx.GetMsg()
	if err != nil {
		return errors.Wrap(err, "cannot get transaction message")
	}
	if msg == nil {
		return errors.Wrap(errors.ErrMsg, "no message")
	}

	dest := reflect.ValueOf(destination)
	if dest.Kind() != reflect.Ptr || dest.IsNil() {
		return errors.Wrap(errors.ErrHuman, "destination must be a non nil pointer")
	}
	src := reflect.ValueOf(msg)
	if src.Kind() == reflect.Ptr {
		src = src.Elem()
	}
	if src.Type() != dest.Elem().Type() {
		return errors.Wrapf(errors.ErrType, "want %T message, got %T", destination, msg)
	}
	dest.Elem().Set(src)

	if err := msg.Validate(); err != nil {
		return errors.Wrap(err, "invalid message")
	}
	return nil
}
