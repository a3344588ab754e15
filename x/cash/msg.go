package cash

import (
	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/coin"
	"github.com/iov-one/tokendist/errors"
	amino "github.com/tendermint/go-amino"
)

const (
	sendTxCost int64 = 100

	maxMemoSize int = 128
)

// SendMsg moves coins of a single asset from the source to the destination.
// It must be authorized by the source.
type SendMsg struct {
	Source      tokendist.Address `json:"source"`
	Destination tokendist.Address `json:"destination"`
	Asset       tokendist.Address `json:"asset"`
	Amount      coin.Amount       `json:"amount"`
	Memo        string            `json:"memo,omitempty"`
}

var _ tokendist.Msg = (*SendMsg)(nil)

// Path returns the routing path for this message
func (SendMsg) Path() string {
	return "cash/send"
}

// Validate makes sure that this is sensible
func (m *SendMsg) Validate() error {
	var errs error
	if !m.Amount.IsPositive() {
		errs = errors.AppendField(errs, "Amount", errors.Wrapf(errors.ErrAmount, "non-positive amount %s", m.Amount))
	}
	errs = errors.AppendField(errs, "Source", m.Source.Validate())
	errs = errors.AppendField(errs, "Destination", m.Destination.Validate())
	errs = errors.AppendField(errs, "Asset", m.Asset.Validate())
	if len(m.Memo) > maxMemoSize {
		errs = errors.AppendField(errs, "Memo", errors.Wrap(errors.ErrInput, "memo too long"))
	}
	return errs
}

func (m *SendMsg) Marshal() ([]byte, error) {
	return amino.MarshalBinaryBare(m)
}

func (m *SendMsg) Unmarshal(raw []byte) error {
	return amino.UnmarshalBinaryBare(raw, m)
}

// RegisterCodec registers the messages of this package on the transaction
// codec.
func RegisterCodec(cdc *amino.Codec) {
	cdc.RegisterConcrete(&SendMsg{}, "cash/send", nil)
}
