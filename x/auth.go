/*
Package x holds what all extensions share: the way a handler learns which
conditions authorized the transaction it processes.
*/
package x

import (
	"context"

	"github.com/iov-one/tokendist"
)

// Authenticator reveals the conditions that authorized the current
// transaction. Handlers receive it in their constructor, so none of them
// depends on a particular authentication scheme.
type Authenticator interface {
	GetConditions(tokendist.Context) []tokendist.Condition
	// HasAddress is true if any of the conditions controls the address.
	HasAddress(tokendist.Context, tokendist.Address) bool
}

// MultiAuth grants the union of the conditions of its members.
type MultiAuth []Authenticator

var _ Authenticator = MultiAuth(nil)

// ChainAuth combines several authenticators. The order of the members is
// the order of the conditions returned.
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth(impls)
}

func (m MultiAuth) GetConditions(ctx tokendist.Context) []tokendist.Condition {
	var all []tokendist.Condition
	for _, a := range m {
		all = append(all, a.GetConditions(ctx)...)
	}
	return all
}

func (m MultiAuth) HasAddress(ctx tokendist.Context, addr tokendist.Address) bool {
	for _, a := range m {
		if a.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// MainSigner returns the first condition, or nil. Messages that act on
// behalf of a single account, like creating a distributor, use it as the
// acting account.
func MainSigner(ctx tokendist.Context, auth Authenticator) tokendist.Condition {
	if conds := auth.GetConditions(ctx); len(conds) > 0 {
		return conds[0]
	}
	return nil
}

// CtxAuth grants the conditions a decorator stored in the context. Each
// decorator uses its own key.
type CtxAuth struct {
	Key string
}

var _ Authenticator = CtxAuth{}

type ctxAuthKey string

// SetConditions returns a context in which the conditions are granted.
func (a CtxAuth) SetConditions(ctx tokendist.Context, conds ...tokendist.Condition) tokendist.Context {
	return context.WithValue(ctx, ctxAuthKey(a.Key), conds)
}

func (a CtxAuth) GetConditions(ctx tokendist.Context) []tokendist.Condition {
	conds, _ := ctx.Value(ctxAuthKey(a.Key)).([]tokendist.Condition)
	return conds
}

func (a CtxAuth) HasAddress(ctx tokendist.Context, addr tokendist.Address) bool {
	for _, c := range a.GetConditions(ctx) {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}
