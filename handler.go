package tokendist

import (
	"encoding/json"

	"github.com/iov-one/tokendist/errors"
)

// Handler processes the messages of one route, for example creating a
// distributor or executing a payout.
type Handler interface {
	Checker
	Deliverer
}

// Checker decides whether a transaction may enter the mempool. It should be
// cheap and must not depend on state that changes within a block.
type Checker interface {
	Check(ctx Context, db KVStore, tx Tx) (*CheckResult, error)
}

// Deliverer applies a transaction to the state.
type Deliverer interface {
	Deliver(ctx Context, db KVStore, tx Tx) (*DeliverResult, error)
}

// Decorator runs around a handler. It may extend the context, reject the
// transaction or alter the result. Authentication and savepoints are
// decorators.
type Decorator interface {
	Check(ctx Context, db KVStore, tx Tx, next Checker) (*CheckResult, error)
	Deliver(ctx Context, db KVStore, tx Tx, next Deliverer) (*DeliverResult, error)
}

// Registry binds handlers to message paths.
type Registry interface {
	Handle(path string, h Handler)
}

// Options is the app_state of the genesis file, split by extension.
type Options map[string]json.RawMessage

// ReadOptions decodes the section stored under the key into obj. A missing
// section leaves obj untouched.
func (o Options) ReadOptions(key string, obj interface{}) error {
	raw, ok := o[key]
	if !ok || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, obj); err != nil {
		return errors.Wrapf(errors.ErrInput, "genesis %q: %s", key, err)
	}
	return nil
}

// Initializer loads the genesis state of an extension.
type Initializer interface {
	FromGenesis(Options, KVStore) error
}

// MultiInitializer runs several initializers in order.
type MultiInitializer []Initializer

var _ Initializer = MultiInitializer(nil)

// ChainInitializers combines initializers into one.
func ChainInitializers(inits ...Initializer) MultiInitializer {
	return MultiInitializer(inits)
}

// FromGenesis stops at the first failing initializer.
func (m MultiInitializer) FromGenesis(opts Options, db KVStore) error {
	for _, in := range m {
		if err := in.FromGenesis(opts, db); err != nil {
			return err
		}
	}
	return nil
}
