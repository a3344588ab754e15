package app

import (
	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/errors"
	abci "github.com/tendermint/tendermint/abci/types"
)

// BaseApp is a StoreApp that additionally decodes incoming transactions and
// routes them through a single handler, usually a decorated Router.
type BaseApp struct {
	*StoreApp
	decoder tokendist.TxDecoder
	handler tokendist.Handler
	// debug makes failed responses carry the full error details.
	debug bool
}

var _ abci.Application = BaseApp{}

// NewBaseApp returns an application that serves store and queries with s
// and processes transactions with h.
func NewBaseApp(s *StoreApp, decoder tokendist.TxDecoder, h tokendist.Handler, debug bool) BaseApp {
	return BaseApp{StoreApp: s, decoder: decoder, handler: h, debug: debug}
}

// DeliverTx applies a transaction to the state of the current block.
func (b BaseApp) DeliverTx(raw []byte) abci.ResponseDeliverTx {
	tx, ctx, err := b.prepare(raw, "deliver_tx")
	if err != nil {
		return tokendist.DeliverOrError(nil, err, b.debug)
	}
	res, err := b.handler.Deliver(ctx, b.DeliverStore(), tx)
	return tokendist.DeliverOrError(res, err, b.debug)
}

// CheckTx validates a transaction against the mempool state.
func (b BaseApp) CheckTx(raw []byte) abci.ResponseCheckTx {
	tx, ctx, err := b.prepare(raw, "check_tx")
	if err != nil {
		return tokendist.CheckOrError(nil, err, b.debug)
	}
	res, err := b.handler.Check(ctx, b.CheckStore(), tx)
	return tokendist.CheckOrError(res, err, b.debug)
}

// prepare decodes the transaction and returns the block context extended
// with logging information about the call. A decoder panic is returned as
// an error.
func (b BaseApp) prepare(raw []byte, call string) (tx tokendist.Tx, ctx tokendist.Context, err error) {
	defer errors.Recover(&err)
	if tx, err = b.decoder(raw); err != nil {
		return nil, nil, err
	}
	ctx = tokendist.WithLogInfo(b.BlockContext(), "call", call, "path", tokendist.GetPath(tx))
	return tx, ctx, nil
}
