package keeper

import (
	"context"

	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/coin"
	"github.com/iov-one/tokendist/x/cash"
	"github.com/iov-one/tokendist/x/distributor"
)

// StoreReader reads the state directly from a store. It is used by keepers
// running next to the node and in tests.
type StoreReader struct {
	db   tokendist.ReadOnlyKVStore
	cash cash.Controller
	ctrl *distributor.Controller
}

var _ Reader = (*StoreReader)(nil)

// NewStoreReader returns a reader of given store.
func NewStoreReader(db tokendist.ReadOnlyKVStore) *StoreReader {
	cashCtrl := cash.NewController(cash.NewBucket())
	return &StoreReader{
		db:   db,
		cash: cashCtrl,
		ctrl: distributor.NewController(cashCtrl),
	}
}

func (r *StoreReader) Distributors(context.Context) ([]distributor.Entry, error) {
	return r.ctrl.List(r.db)
}

func (r *StoreReader) Policy(_ context.Context, id []byte, asset tokendist.Address) (*distributor.Policy, error) {
	return r.ctrl.GetPolicy(r.db, id, asset)
}

func (r *StoreReader) Balance(_ context.Context, holder, asset tokendist.Address) (coin.Amount, error) {
	return r.cash.Balance(r.db, holder, asset)
}
