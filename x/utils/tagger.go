package utils

import (
	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/x"
)

const (
	// ActionKey tags a delivered transaction with the path of its message.
	ActionKey = "action"
	// SignerKey tags a delivered transaction with the address of its main
	// signer. Unsigned transactions do not get this tag.
	SignerKey = "signer"
)

// ActionTagger tags every successfully delivered transaction, so that
// clients can search for or subscribe to a kind of operation (for example
// all executions) or to the operations of a single account.
//
// The signer can be read only by a tagger placed after the decorator that
// authenticates the transaction.
type ActionTagger struct {
	auth x.Authenticator
}

var _ tokendist.Decorator = ActionTagger{}

// NewActionTagger returns a tagger reading the main signer with auth. A nil
// auth disables the signer tag.
func NewActionTagger(auth x.Authenticator) ActionTagger {
	return ActionTagger{auth: auth}
}

// Check does not tag, check results are not indexed.
func (ActionTagger) Check(ctx tokendist.Context, db tokendist.KVStore, tx tokendist.Tx, next tokendist.Checker) (*tokendist.CheckResult, error) {
	return next.Check(ctx, db, tx)
}

func (t ActionTagger) Deliver(ctx tokendist.Context, db tokendist.KVStore, tx tokendist.Tx, next tokendist.Deliverer) (*tokendist.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	res, err := next.Deliver(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	res.Tags = append(res.Tags, tokendist.Tag(ActionKey, msg.Path()))
	if t.auth == nil {
		return res, nil
	}
	if signer := x.MainSigner(ctx, t.auth); signer != nil {
		res.Tags = append(res.Tags, tokendist.Tag(SignerKey, signer.Address().String()))
	}
	return res, nil
}
