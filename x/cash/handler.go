package cash

import (
	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/errors"
	"github.com/iov-one/tokendist/x"
)

// RegisterRoutes registers the handler of SendMsg.
func RegisterRoutes(r tokendist.Registry, auth x.Authenticator, control Controller) {
	r.Handle(SendMsg{}.Path(), NewSendHandler(auth, control))
}

// RegisterQuery exposes all holdings under "/cash".
func RegisterQuery(qr tokendist.QueryRouter) {
	NewBucket().Register("cash", qr)
}

// SendHandler moves tokens out of an account controlled by a signer of the
// transaction. Funding a distributor is a plain send to its custody
// address.
type SendHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ tokendist.Handler = SendHandler{}

func NewSendHandler(auth x.Authenticator, control Controller) SendHandler {
	return SendHandler{auth: auth, control: control}
}

func (h SendHandler) Check(ctx tokendist.Context, db tokendist.KVStore, tx tokendist.Tx) (*tokendist.CheckResult, error) {
	if _, err := h.load(ctx, tx); err != nil {
		return nil, err
	}
	return &tokendist.CheckResult{GasAllocated: sendTxCost}, nil
}

func (h SendHandler) Deliver(ctx tokendist.Context, db tokendist.KVStore, tx tokendist.Tx) (*tokendist.DeliverResult, error) {
	msg, err := h.load(ctx, tx)
	if err != nil {
		return nil, err
	}
	err = h.control.MoveCoins(db, msg.Source, msg.Destination, msg.Asset, msg.Amount)
	if err != nil {
		return nil, err
	}
	return &tokendist.DeliverResult{}, nil
}

// load returns the validated message, if its source account signed it.
func (h SendHandler) load(ctx tokendist.Context, tx tokendist.Tx) (*SendMsg, error) {
	var msg SendMsg
	if err := tokendist.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Source) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "source signature missing")
	}
	return &msg, nil
}
