package app

import (
	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/errors"
	"github.com/iov-one/tokendist/x/cash"
	"github.com/iov-one/tokendist/x/distributor"
	"github.com/iov-one/tokendist/x/sigs"
	amino "github.com/tendermint/go-amino"
)

// cdc encodes transactions. Every message that can be carried by a Tx must
// be registered here.
var cdc = NewCodec()

// NewCodec returns an amino codec that knows all messages of this
// application.
func NewCodec() *amino.Codec {
	c := amino.NewCodec()
	c.RegisterInterface((*tokendist.Msg)(nil), nil)
	distributor.RegisterCodec(c)
	cash.RegisterCodec(c)
	sigs.RegisterCodec(c)
	return c
}

// Tx is the transaction format accepted by distd. It carries a single
// message signed by any number of keys.
type Tx struct {
	Msg        tokendist.Msg        `json:"msg"`
	Signatures []*sigs.StdSignature `json:"signatures"`
}

// make sure tx fulfills all interfaces
var _ tokendist.Tx = (*Tx)(nil)
var _ sigs.SignedTx = (*Tx)(nil)

// NewTx returns an unsigned transaction carrying given message.
func NewTx(msg tokendist.Msg) *Tx {
	return &Tx{Msg: msg}
}

// TxDecoder creates a Tx and unmarshals bytes into it
func TxDecoder(bz []byte) (tokendist.Tx, error) {
	tx := new(Tx)
	if err := tx.Unmarshal(bz); err != nil {
		return nil, err
	}
	return tx, nil
}

func (tx *Tx) GetMsg() (tokendist.Msg, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrMsg, "no message")
	}
	return tx.Msg, nil
}

func (tx *Tx) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(tx)
}

func (tx *Tx) Unmarshal(bz []byte) error {
	if err := cdc.UnmarshalBinaryBare(bz, tx); err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot decode tx: %s", err)
	}
	return nil
}

// GetSignatures returns all signatures of this transaction.
func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

// GetSignBytes returns the bytes to sign, which never include the
// signatures themselves.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	return cdc.MarshalBinaryBare(&Tx{Msg: tx.Msg})
}
