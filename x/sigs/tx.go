package sigs

import (
	"github.com/iov-one/tokendist/crypto"
	"github.com/iov-one/tokendist/errors"
)

// SignedTx is implemented by transactions that carry signatures.
type SignedTx interface {
	// GetSignBytes returns the serialized transaction with all
	// signatures left out. This is what every signature covers.
	GetSignBytes() ([]byte, error)
	GetSignatures() []*StdSignature
}

// StdSignature is a signature made by Pubkey while its signing state was
// at Sequence.
type StdSignature struct {
	Sequence  int64             `json:"sequence"`
	Pubkey    *crypto.PublicKey `json:"pubkey"`
	Signature *crypto.Signature `json:"signature"`
}

func (s *StdSignature) Validate() error {
	switch {
	case s.Sequence < 0:
		return errors.Wrapf(ErrInvalidSequence, "negative sequence %d", s.Sequence)
	case s.Pubkey == nil:
		return errors.Wrap(errors.ErrUnauthorized, "missing public key")
	case s.Signature == nil:
		return errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	return nil
}
