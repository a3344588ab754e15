package sigs

import (
	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/disttest"
	"github.com/iov-one/tokendist/x"
)

// StdTx is a signed transaction carrying a mock message.
type StdTx struct {
	disttest.Tx
	Signatures []*StdSignature
}

var _ SignedTx = (*StdTx)(nil)
var _ tokendist.Tx = (*StdTx)(nil)

func NewStdTx(payload []byte) *StdTx {
	return &StdTx{Tx: disttest.Tx{Msg: &disttest.Msg{RoutePath: string(payload)}}}
}

func (tx *StdTx) GetSignatures() []*StdSignature {
	return tx.Signatures
}

func (tx *StdTx) GetSignBytes() ([]byte, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	return msg.Marshal()
}

// SigCheckHandler stores the seen signers on each call
type SigCheckHandler struct {
	Signers []tokendist.Condition
}

var _ tokendist.Handler = (*SigCheckHandler)(nil)

func (s *SigCheckHandler) Check(ctx tokendist.Context, store tokendist.KVStore, tx tokendist.Tx) (*tokendist.CheckResult, error) {
	s.Signers = Authenticate().GetConditions(ctx)
	return &tokendist.CheckResult{}, nil
}

func (s *SigCheckHandler) Deliver(ctx tokendist.Context, store tokendist.KVStore, tx tokendist.Tx) (*tokendist.DeliverResult, error) {
	s.Signers = Authenticate().GetConditions(ctx)
	return &tokendist.DeliverResult{}, nil
}

var _ x.Authenticator = Authenticate()
