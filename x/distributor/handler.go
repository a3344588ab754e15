package distributor

import (
	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/errors"
	"github.com/iov-one/tokendist/x"
)

const (
	createCost             = 200
	setPolicyCost          = 100
	executePerReceiverCost = 10
	withdrawCost           = 50
	transferCost           = 50
)

// RegisterQuery registers distributor buckets for querying.
func RegisterQuery(qr tokendist.QueryRouter) {
	NewDistributorBucket().Register("distributors", qr)
	NewPolicyBucket().Register("policies", qr)
}

// RegisterRoutes registers handlers for distributor message processing.
func RegisterRoutes(r tokendist.Registry, auth x.Authenticator, cash CashController) {
	ctrl := NewController(cash)
	r.Handle(pathCreateMsg, &createHandler{auth: auth, ctrl: ctrl})
	r.Handle(pathSetPolicyMsg, &setPolicyHandler{auth: auth, ctrl: ctrl})
	r.Handle(pathExecuteMsg, &executeHandler{auth: auth, ctrl: ctrl})
	r.Handle(pathWithdrawMsg, &withdrawHandler{auth: auth, ctrl: ctrl})
	r.Handle(pathTransferOwnershipMsg, &transferOwnershipHandler{auth: auth, ctrl: ctrl})
}

type createHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ tokendist.Handler = (*createHandler)(nil)

func (h *createHandler) Check(ctx tokendist.Context, db tokendist.KVStore, tx tokendist.Tx) (*tokendist.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &tokendist.CheckResult{GasAllocated: createCost}, nil
}

func (h *createHandler) Deliver(ctx tokendist.Context, db tokendist.KVStore, tx tokendist.Tx) (*tokendist.DeliverResult, error) {
	msg, creator, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	id, d, err := h.ctrl.Create(db, creator)
	if err != nil {
		return nil, err
	}
	if p := msg.InitialPolicy(); p != nil {
		if err := h.ctrl.SetPolicy(db, id, msg.Asset, p); err != nil {
			return nil, errors.Wrap(err, "initial policy")
		}
	}

	tokendist.GetLogger(ctx).Info("distributor created",
		"id", FormatID(id), "creator", creator, "address", d.Address)
	event := CreatedEvent{ID: id, Address: d.Address, Creator: creator}
	return &tokendist.DeliverResult{Data: id, Tags: event.Tags()}, nil
}

func (h *createHandler) validate(ctx tokendist.Context, db tokendist.KVStore, tx tokendist.Tx) (*CreateMsg, tokendist.Address, error) {
	var msg CreateMsg
	if err := tokendist.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	creator := msg.Creator
	if creator == nil {
		signer := x.MainSigner(ctx, h.auth)
		if signer == nil {
			return nil, nil, errors.Wrap(errors.ErrUnauthorized, "no signer")
		}
		creator = signer.Address()
	}
	if !h.auth.HasAddress(ctx, creator) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "creator signature missing")
	}
	// The initial policy is validated before anything is created, so an
	// invalid one is reported on check.
	if p := msg.InitialPolicy(); p != nil {
		if err := p.Validate(); err != nil {
			return nil, nil, errors.Wrap(err, "initial policy")
		}
	}
	return &msg, creator, nil
}

type setPolicyHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ tokendist.Handler = (*setPolicyHandler)(nil)

func (h *setPolicyHandler) Check(ctx tokendist.Context, db tokendist.KVStore, tx tokendist.Tx) (*tokendist.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &tokendist.CheckResult{GasAllocated: setPolicyCost}, nil
}

func (h *setPolicyHandler) Deliver(ctx tokendist.Context, db tokendist.KVStore, tx tokendist.Tx) (*tokendist.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ctrl.SetPolicy(db, msg.DistributorID, msg.Asset, msg.Policy()); err != nil {
		return nil, err
	}
	return &tokendist.DeliverResult{}, nil
}

func (h *setPolicyHandler) validate(ctx tokendist.Context, db tokendist.KVStore, tx tokendist.Tx) (*SetPolicyMsg, error) {
	var msg SetPolicyMsg
	if err := tokendist.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if _, err := requireOwner(ctx, h.auth, h.ctrl, db, msg.DistributorID); err != nil {
		return nil, err
	}
	if err := msg.Policy().Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}

type executeHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ tokendist.Handler = (*executeHandler)(nil)

func (h *executeHandler) Check(ctx tokendist.Context, db tokendist.KVStore, tx tokendist.Tx) (*tokendist.CheckResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	// Ineligible requests do not enter the mempool.
	if err := h.ctrl.CanExecute(db, msg.DistributorID, msg.Asset, msg.Snapshot(), msg.Fee); err != nil {
		return nil, err
	}
	return &tokendist.CheckResult{
		GasAllocated: executePerReceiverCost * int64(len(msg.Receivers)+1),
	}, nil
}

func (h *executeHandler) Deliver(ctx tokendist.Context, db tokendist.KVStore, tx tokendist.Tx) (*tokendist.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	ex, err := h.ctrl.Execute(db, msg.DistributorID, msg.Asset, msg.Snapshot(), msg.Fee)
	if err != nil {
		return nil, err
	}

	tokendist.GetLogger(ctx).Info("distributor executed",
		"id", FormatID(msg.DistributorID),
		"asset", msg.Asset,
		"distributed", ex.Distributed,
		"fee", ex.Fee,
		"payouts", len(ex.Payouts))
	event := ExecutedEvent{
		ID:          msg.DistributorID,
		Asset:       msg.Asset,
		Distributed: ex.Distributed,
		Fee:         ex.Fee,
	}
	return &tokendist.DeliverResult{Tags: event.Tags()}, nil
}

func (h *executeHandler) validate(ctx tokendist.Context, db tokendist.KVStore, tx tokendist.Tx) (*ExecuteMsg, error) {
	var msg ExecuteMsg
	if err := tokendist.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	d, err := h.ctrl.Get(db, msg.DistributorID)
	if err != nil {
		return nil, err
	}
	if !h.auth.HasAddress(ctx, d.Executor) {
		return nil, errors.Wrap(ErrNotExecutor, "executor signature missing")
	}
	return &msg, nil
}

type withdrawHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ tokendist.Handler = (*withdrawHandler)(nil)

func (h *withdrawHandler) Check(ctx tokendist.Context, db tokendist.KVStore, tx tokendist.Tx) (*tokendist.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &tokendist.CheckResult{GasAllocated: withdrawCost}, nil
}

func (h *withdrawHandler) Deliver(ctx tokendist.Context, db tokendist.KVStore, tx tokendist.Tx) (*tokendist.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	amount, err := h.ctrl.Withdraw(db, msg.DistributorID, msg.Asset)
	if err != nil {
		return nil, err
	}
	return &tokendist.DeliverResult{
		Tags: withdrawnTags(msg.DistributorID, msg.Asset, amount),
	}, nil
}

func (h *withdrawHandler) validate(ctx tokendist.Context, db tokendist.KVStore, tx tokendist.Tx) (*WithdrawMsg, error) {
	var msg WithdrawMsg
	if err := tokendist.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if _, err := requireOwner(ctx, h.auth, h.ctrl, db, msg.DistributorID); err != nil {
		return nil, err
	}
	return &msg, nil
}

type transferOwnershipHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ tokendist.Handler = (*transferOwnershipHandler)(nil)

func (h *transferOwnershipHandler) Check(ctx tokendist.Context, db tokendist.KVStore, tx tokendist.Tx) (*tokendist.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &tokendist.CheckResult{GasAllocated: transferCost}, nil
}

func (h *transferOwnershipHandler) Deliver(ctx tokendist.Context, db tokendist.KVStore, tx tokendist.Tx) (*tokendist.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ctrl.TransferOwnership(db, msg.DistributorID, msg.NewOwner); err != nil {
		return nil, err
	}
	return &tokendist.DeliverResult{
		Tags: ownershipTags(msg.DistributorID, msg.NewOwner),
	}, nil
}

func (h *transferOwnershipHandler) validate(ctx tokendist.Context, db tokendist.KVStore, tx tokendist.Tx) (*TransferOwnershipMsg, error) {
	var msg TransferOwnershipMsg
	if err := tokendist.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if _, err := requireOwner(ctx, h.auth, h.ctrl, db, msg.DistributorID); err != nil {
		return nil, err
	}
	return &msg, nil
}

// requireOwner loads the distributor and ensures its owner signed the
// transaction.
func requireOwner(ctx tokendist.Context, auth x.Authenticator, ctrl *Controller, db tokendist.ReadOnlyKVStore, id []byte) (*Distributor, error) {
	d, err := ctrl.Get(db, id)
	if err != nil {
		return nil, err
	}
	if !auth.HasAddress(ctx, d.Owner) {
		return nil, errors.Wrap(ErrNotOwner, "owner signature missing")
	}
	return d, nil
}
