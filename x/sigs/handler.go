package sigs

import (
	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/errors"
	"github.com/iov-one/tokendist/orm"
	"github.com/iov-one/tokendist/x"
)

// RegisterRoutes registers the handler of BumpSequenceMsg.
func RegisterRoutes(r tokendist.Registry, auth x.Authenticator) {
	r.Handle(pathBumpSequenceMsg, &bumpSequenceHandler{bucket: NewBucket(), auth: auth})
}

// bumpSequenceHandler moves the sequence of the main signer forward, which
// invalidates every transaction signed in advance with the skipped values.
type bumpSequenceHandler struct {
	auth   x.Authenticator
	bucket Bucket
}

func (h *bumpSequenceHandler) Check(ctx tokendist.Context, db tokendist.KVStore, tx tokendist.Tx) (*tokendist.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &tokendist.CheckResult{}, nil
}

func (h *bumpSequenceHandler) Deliver(ctx tokendist.Context, db tokendist.KVStore, tx tokendist.Tx) (*tokendist.DeliverResult, error) {
	user, msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	// The signature of this transaction used up one value already.
	if msg.Increment > 1 {
		user.Sequence += int64(msg.Increment) - 1
		if err := h.bucket.Save(db, orm.NewSimpleObj(user.Pubkey.Address(), user)); err != nil {
			return nil, errors.Wrap(err, "save user")
		}
	}
	return &tokendist.DeliverResult{}, nil
}

func (h *bumpSequenceHandler) validate(ctx tokendist.Context, db tokendist.KVStore, tx tokendist.Tx) (*UserData, *BumpSequenceMsg, error) {
	var msg BumpSequenceMsg
	if err := tokendist.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	signer := x.MainSigner(ctx, h.auth)
	if signer == nil {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	obj, err := h.bucket.Get(db, signer.Address())
	if err != nil {
		return nil, nil, errors.Wrap(err, "bucket")
	}
	user := AsUser(obj)
	switch {
	case user == nil:
		return nil, nil, errors.Wrap(errors.ErrNotFound, "no sequence")
	case user.Sequence+int64(msg.Increment) > maxSequenceValue:
		return nil, nil, errors.Wrap(errors.ErrOverflow, "user sequence")
	}
	return user, &msg, nil
}
