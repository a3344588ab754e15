package app

import (
	"reflect"

	"github.com/iov-one/tokendist"
)

// Decorators is an ordered list of decorators waiting for the handler they
// wrap. The first decorator is the outermost one.
type Decorators struct {
	chain []tokendist.Decorator
}

// ChainDecorators starts a decorator chain. Nil entries, including typed nil
// pointers, are skipped so optional decorators can be passed as they are.
//
//	app.ChainDecorators(
//		utils.NewLogging(),
//		utils.NewRecovery(),
//		sigs.NewDecorator(),
//	).WithHandler(router)
func ChainDecorators(chain ...tokendist.Decorator) Decorators {
	return Decorators{}.Chain(chain...)
}

// Chain returns a new chain extended with more decorators. The receiver is
// never modified, so several chains may share a common base.
func (d Decorators) Chain(chain ...tokendist.Decorator) Decorators {
	all := make([]tokendist.Decorator, 0, len(d.chain)+len(chain))
	all = append(all, d.chain...)
	for _, dec := range chain {
		if !isNil(dec) {
			all = append(all, dec)
		}
	}
	return Decorators{chain: all}
}

// WithHandler returns a handler that runs every decorator of the chain, in
// order, before calling h.
func (d Decorators) WithHandler(h tokendist.Handler) tokendist.Handler {
	for i := len(d.chain) - 1; i >= 0; i-- {
		h = step{d: d.chain[i], next: h}
	}
	return h
}

func isNil(d tokendist.Decorator) bool {
	if d == nil {
		return true
	}
	v := reflect.ValueOf(d)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// step binds a decorator to the rest of the chain.
type step struct {
	d    tokendist.Decorator
	next tokendist.Handler
}

var _ tokendist.Handler = step{}

func (s step) Check(ctx tokendist.Context, db tokendist.KVStore, tx tokendist.Tx) (*tokendist.CheckResult, error) {
	return s.d.Check(ctx, db, tx, s.next)
}

func (s step) Deliver(ctx tokendist.Context, db tokendist.KVStore, tx tokendist.Tx) (*tokendist.DeliverResult, error) {
	return s.d.Deliver(ctx, db, tx, s.next)
}
