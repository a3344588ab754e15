package disttest

import "github.com/iov-one/tokendist"

// Auth is an x.Authenticator that treats Signer and every entry of Signers
// as signers of the transaction.
type Auth struct {
	Signer  tokendist.Condition
	Signers []tokendist.Condition
}

func (a *Auth) GetConditions(tokendist.Context) []tokendist.Condition {
	all := make([]tokendist.Condition, 0, len(a.Signers)+1)
	if a.Signer != nil {
		all = append(all, a.Signer)
	}
	return append(all, a.Signers...)
}

func (a *Auth) HasAddress(ctx tokendist.Context, addr tokendist.Address) bool {
	for _, c := range a.GetConditions(ctx) {
		if c.Address().Equals(addr) {
			return true
		}
	}
	return false
}
