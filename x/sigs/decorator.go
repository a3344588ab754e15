/*
Package sigs authenticates transactions by their ed25519 signatures.

Every signature is bound to the chain ID and to the sequence of its key, which
is incremented by each use, so a signed transaction can never be replayed.
The conditions of all signing keys are exposed through Authenticate.
*/
package sigs

import (
	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/errors"
	"github.com/iov-one/tokendist/x"
)

// signatureVerifyCost is the gas charged for every verified signature.
const signatureVerifyCost = 500

var auth = x.CtxAuth{Key: "sigs"}

// Authenticate returns the Authenticator granting the conditions of all keys
// that signed the current transaction.
func Authenticate() x.Authenticator {
	return auth
}

// RegisterQuery exposes the signing state of all keys under "/auth".
func RegisterQuery(qr tokendist.QueryRouter) {
	NewBucket().Register("auth", qr)
}

// Decorator verifies the signatures of every SignedTx before passing it on.
// Transactions that do not carry signatures at all are passed on
// unauthenticated.
type Decorator struct {
	allowMissingSigs bool
}

var _ tokendist.Decorator = Decorator{}

// NewDecorator returns a decorator that rejects a SignedTx without any
// signature.
func NewDecorator() Decorator {
	return Decorator{}
}

// AllowMissingSigs returns a copy of the decorator that accepts a SignedTx
// with no signatures.
func (d Decorator) AllowMissingSigs() Decorator {
	d.allowMissingSigs = true
	return d
}

// Check charges signatureVerifyCost for every valid signature on top of the
// gas allocated by the wrapped handler.
func (d Decorator) Check(ctx tokendist.Context, db tokendist.KVStore, tx tokendist.Tx, next tokendist.Checker) (*tokendist.CheckResult, error) {
	ctx, n, err := d.authenticate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	res, err := next.Check(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	res.GasAllocated += int64(n) * signatureVerifyCost
	return res, nil
}

func (d Decorator) Deliver(ctx tokendist.Context, db tokendist.KVStore, tx tokendist.Tx, next tokendist.Deliverer) (*tokendist.DeliverResult, error) {
	ctx, _, err := d.authenticate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	return next.Deliver(ctx, db, tx)
}

// authenticate returns the context carrying the signer conditions and the
// number of verified signatures.
func (d Decorator) authenticate(ctx tokendist.Context, db tokendist.KVStore, tx tokendist.Tx) (tokendist.Context, int, error) {
	signed, ok := tx.(SignedTx)
	if !ok {
		return ctx, 0, nil
	}
	signers, err := VerifyTxSignatures(db, signed, tokendist.GetChainID(ctx))
	switch {
	case err != nil:
		return nil, 0, errors.Wrap(err, "cannot verify signatures")
	case len(signers) == 0 && !d.allowMissingSigs:
		return nil, 0, errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	return auth.SetConditions(ctx, signers...), len(signers), nil
}
