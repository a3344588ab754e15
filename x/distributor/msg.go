package distributor

import (
	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/coin"
	"github.com/iov-one/tokendist/errors"
	amino "github.com/tendermint/go-amino"
)

const (
	pathCreateMsg            = "distributor/create"
	pathSetPolicyMsg         = "distributor/set_policy"
	pathExecuteMsg           = "distributor/execute"
	pathWithdrawMsg          = "distributor/withdraw"
	pathTransferOwnershipMsg = "distributor/transfer_ownership"
)

// RegisterCodec registers the messages of this package on the transaction
// codec.
func RegisterCodec(cdc *amino.Codec) {
	cdc.RegisterConcrete(&CreateMsg{}, pathCreateMsg, nil)
	cdc.RegisterConcrete(&SetPolicyMsg{}, pathSetPolicyMsg, nil)
	cdc.RegisterConcrete(&ExecuteMsg{}, pathExecuteMsg, nil)
	cdc.RegisterConcrete(&WithdrawMsg{}, pathWithdrawMsg, nil)
	cdc.RegisterConcrete(&TransferOwnershipMsg{}, pathTransferOwnershipMsg, nil)
}

// CreateMsg creates a new distributor owned by its creator. When an asset
// is given, the initial policy of that asset is set in the same operation.
type CreateMsg struct {
	// Creator must sign the transaction. When empty the main signer is
	// used.
	Creator tokendist.Address `json:"creator,omitempty"`

	Asset     tokendist.Address   `json:"asset,omitempty"`
	Threshold coin.Amount         `json:"threshold"`
	Receivers []tokendist.Address `json:"receivers,omitempty"`
	Shares    []uint32            `json:"shares,omitempty"`
}

var _ tokendist.Msg = (*CreateMsg)(nil)

func (CreateMsg) Path() string {
	return pathCreateMsg
}

func (m *CreateMsg) Validate() error {
	var errs error
	if m.Creator != nil {
		errs = errors.AppendField(errs, "Creator", m.Creator.Validate())
	}
	if m.Asset != nil {
		errs = errors.AppendField(errs, "Asset", m.Asset.Validate())
	} else if len(m.Receivers) != 0 || len(m.Shares) != 0 {
		errs = errors.AppendField(errs, "Asset", errors.Wrap(errors.ErrEmpty, "policy without an asset"))
	}
	return errs
}

// InitialPolicy returns the policy carried by the message or nil.
func (m *CreateMsg) InitialPolicy() *Policy {
	if m.Asset == nil {
		return nil
	}
	return &Policy{
		Threshold: m.Threshold,
		Receivers: m.Receivers,
		Shares:    m.Shares,
	}
}

func (m *CreateMsg) Marshal() ([]byte, error) {
	return amino.MarshalBinaryBare(m)
}

func (m *CreateMsg) Unmarshal(raw []byte) error {
	return amino.UnmarshalBinaryBare(raw, m)
}

// SetPolicyMsg replaces the policy of one asset. Only the owner can send it.
type SetPolicyMsg struct {
	DistributorID []byte              `json:"distributor_id"`
	Asset         tokendist.Address   `json:"asset"`
	Threshold     coin.Amount         `json:"threshold"`
	Receivers     []tokendist.Address `json:"receivers"`
	Shares        []uint32            `json:"shares"`
}

var _ tokendist.Msg = (*SetPolicyMsg)(nil)

func (SetPolicyMsg) Path() string {
	return pathSetPolicyMsg
}

// Validate checks the references only. The allocation is validated after the
// owner was authenticated.
func (m *SetPolicyMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "DistributorID", validateID(m.DistributorID))
	errs = errors.AppendField(errs, "Asset", m.Asset.Validate())
	return errs
}

// Policy returns the policy carried by the message.
func (m *SetPolicyMsg) Policy() *Policy {
	return &Policy{
		Threshold: m.Threshold,
		Receivers: m.Receivers,
		Shares:    m.Shares,
	}
}

func (m *SetPolicyMsg) Marshal() ([]byte, error) {
	return amino.MarshalBinaryBare(m)
}

func (m *SetPolicyMsg) Unmarshal(raw []byte) error {
	return amino.UnmarshalBinaryBare(raw, m)
}

// ExecuteMsg requests a payout of one asset. It carries the policy the
// executor saw when deciding to execute, and the fee it claims. The request
// is rejected if the policy changed in the meantime.
type ExecuteMsg struct {
	DistributorID []byte              `json:"distributor_id"`
	Asset         tokendist.Address   `json:"asset"`
	Threshold     coin.Amount         `json:"threshold"`
	Receivers     []tokendist.Address `json:"receivers"`
	Shares        []uint32            `json:"shares"`
	Fee           coin.Amount         `json:"fee"`
}

var _ tokendist.Msg = (*ExecuteMsg)(nil)

func (ExecuteMsg) Path() string {
	return pathExecuteMsg
}

func (m *ExecuteMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "DistributorID", validateID(m.DistributorID))
	errs = errors.AppendField(errs, "Asset", m.Asset.Validate())
	return errs
}

// Snapshot returns the policy the execution was requested for.
func (m *ExecuteMsg) Snapshot() *Policy {
	return &Policy{
		Threshold: m.Threshold,
		Receivers: m.Receivers,
		Shares:    m.Shares,
	}
}

func (m *ExecuteMsg) Marshal() ([]byte, error) {
	return amino.MarshalBinaryBare(m)
}

func (m *ExecuteMsg) Unmarshal(raw []byte) error {
	return amino.UnmarshalBinaryBare(raw, m)
}

// WithdrawMsg moves the whole balance of an asset to the owner.
type WithdrawMsg struct {
	DistributorID []byte            `json:"distributor_id"`
	Asset         tokendist.Address `json:"asset"`
}

var _ tokendist.Msg = (*WithdrawMsg)(nil)

func (WithdrawMsg) Path() string {
	return pathWithdrawMsg
}

func (m *WithdrawMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "DistributorID", validateID(m.DistributorID))
	errs = errors.AppendField(errs, "Asset", m.Asset.Validate())
	return errs
}

func (m *WithdrawMsg) Marshal() ([]byte, error) {
	return amino.MarshalBinaryBare(m)
}

func (m *WithdrawMsg) Unmarshal(raw []byte) error {
	return amino.UnmarshalBinaryBare(raw, m)
}

// TransferOwnershipMsg hands a distributor over to a new owner.
type TransferOwnershipMsg struct {
	DistributorID []byte            `json:"distributor_id"`
	NewOwner      tokendist.Address `json:"new_owner"`
}

var _ tokendist.Msg = (*TransferOwnershipMsg)(nil)

func (TransferOwnershipMsg) Path() string {
	return pathTransferOwnershipMsg
}

func (m *TransferOwnershipMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "DistributorID", validateID(m.DistributorID))
	if err := m.NewOwner.Validate(); err != nil {
		errs = errors.AppendField(errs, "NewOwner", errors.Wrap(errors.ErrInput, err.Error()))
	}
	return errs
}

func (m *TransferOwnershipMsg) Marshal() ([]byte, error) {
	return amino.MarshalBinaryBare(m)
}

func (m *TransferOwnershipMsg) Unmarshal(raw []byte) error {
	return amino.UnmarshalBinaryBare(raw, m)
}

func validateID(id []byte) error {
	switch len(id) {
	case 0:
		return errors.Wrap(errors.ErrEmpty, "id")
	case idLength:
		return nil
	default:
		return errors.Wrapf(errors.ErrInput, "id must be %d bytes", idLength)
	}
}
