package sigs

import (
	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/errors"
	amino "github.com/tendermint/go-amino"
)

const (
	pathBumpSequenceMsg = "sigs/bump_sequence"

	maxSequenceIncrement = 1000
	minSequenceIncrement = 1
)

// BumpSequenceMsg increments the sequence of the main signer, which
// invalidates all transactions signed ahead with the skipped values.
type BumpSequenceMsg struct {
	Increment uint32 `json:"increment"`
}

var _ tokendist.Msg = (*BumpSequenceMsg)(nil)

func (BumpSequenceMsg) Path() string {
	return pathBumpSequenceMsg
}

func (msg *BumpSequenceMsg) Validate() error {
	if msg.Increment < minSequenceIncrement {
		return errors.Wrapf(errors.ErrMsg, "increment must be at least %d", minSequenceIncrement)
	}
	if msg.Increment > maxSequenceIncrement {
		return errors.Wrapf(errors.ErrMsg, "increment must not be greater than %d", maxSequenceIncrement)
	}
	return nil
}

func (msg *BumpSequenceMsg) Marshal() ([]byte, error) {
	return amino.MarshalBinaryBare(msg)
}

func (msg *BumpSequenceMsg) Unmarshal(raw []byte) error {
	return amino.UnmarshalBinaryBare(raw, msg)
}

// RegisterCodec registers the messages of this package, so they can be
// carried by a transaction as an interface value.
func RegisterCodec(cdc *amino.Codec) {
	cdc.RegisterConcrete(&BumpSequenceMsg{}, pathBumpSequenceMsg, nil)
}
