package utils

import (
	"fmt"

	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/errors"
)

// Recovery turns a panic of any inner handler into an ErrPanic error, so
// that a faulty transaction fails on its own instead of stopping the node.
// Recovered panics are logged together with the message path.
type Recovery struct{}

var _ tokendist.Decorator = Recovery{}

// NewRecovery creates a Recovery decorator
func NewRecovery() Recovery {
	return Recovery{}
}

func (Recovery) Check(ctx tokendist.Context, store tokendist.KVStore, tx tokendist.Tx, next tokendist.Checker) (_ *tokendist.CheckResult, err error) {
	defer recoverTx(ctx, tx, &err)
	return next.Check(ctx, store, tx)
}

func (Recovery) Deliver(ctx tokendist.Context, store tokendist.KVStore, tx tokendist.Tx, next tokendist.Deliverer) (_ *tokendist.DeliverResult, err error) {
	defer recoverTx(ctx, tx, &err)
	return next.Deliver(ctx, store, tx)
}

// recoverTx must be deferred directly, recover returns nil otherwise.
func recoverTx(ctx tokendist.Context, tx tokendist.Tx, err *error) {
	r := recover()
	if r == nil {
		return
	}
	*err = errors.Wrapf(errors.ErrPanic, "%v", r)
	tokendist.GetLogger(ctx).Error("Recovered from panic",
		"path", tokendist.GetPath(tx),
		"panic", fmt.Sprint(r))
}
