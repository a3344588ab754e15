package distributor

import (
	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/coin"
	"github.com/iov-one/tokendist/errors"
)

// CashController moves coins held in custody.
// Required functionality is implemented by the x/cash extension.
type CashController interface {
	Balance(db tokendist.ReadOnlyKVStore, holder, asset tokendist.Address) (coin.Amount, error)
	MoveCoins(db tokendist.KVStore, src, dest, asset tokendist.Address, amount coin.Amount) error
}

// Controller implements the state transitions of distributors. It does not
// authenticate, callers must make sure the requester is allowed to perform
// an operation.
type Controller struct {
	distributors DistributorBucket
	policies     PolicyBucket
	factory      FactoryBucket
	cash         CashController
}

// NewController returns a controller operating on the default buckets.
func NewController(cash CashController) *Controller {
	return &Controller{
		distributors: NewDistributorBucket(),
		policies:     NewPolicyBucket(),
		factory:      NewFactoryBucket(),
		cash:         cash,
	}
}

// Create creates a distributor owned by its creator. An account can create
// only one distributor, ever. A second attempt fails with ErrDuplicate.
func (c *Controller) Create(db tokendist.KVStore, creator tokendist.Address) ([]byte, *Distributor, error) {
	f, err := c.factory.GetFactory(db)
	if err != nil {
		return nil, nil, err
	}
	d := &Distributor{
		Creator:  creator,
		Owner:    creator,
		Executor: f.Executor,
	}
	id, err := c.distributors.Create(db, d)
	if err != nil {
		if errors.ErrDuplicate.Is(err) {
			return nil, nil, errors.Wrapf(errors.ErrDuplicate, "%s already created a distributor", creator)
		}
		return nil, nil, errors.Wrap(err, "cannot create")
	}
	return id, d, nil
}

// Get returns the distributor with given ID or ErrNotFound.
func (c *Controller) Get(db tokendist.ReadOnlyKVStore, id []byte) (*Distributor, error) {
	return c.distributors.GetDistributor(db, id)
}

// CreatedBy returns the distributor created by given account or ErrNotFound.
func (c *Controller) CreatedBy(db tokendist.ReadOnlyKVStore, creator tokendist.Address) ([]byte, *Distributor, error) {
	return c.distributors.CreatedBy(db, creator)
}

// Entry is a distributor together with its ID.
type Entry struct {
	ID          []byte
	Distributor *Distributor
}

// List returns all distributors in creation order.
func (c *Controller) List(db tokendist.ReadOnlyKVStore) ([]Entry, error) {
	objs, err := c.distributors.All(db)
	if err != nil {
		return nil, err
	}
	res := make([]Entry, 0, len(objs))
	for _, obj := range objs {
		d, err := asDistributor(obj)
		if err != nil {
			return nil, err
		}
		res = append(res, Entry{ID: obj.Key(), Distributor: d})
	}
	return res, nil
}

// SetPolicy replaces the policy of given asset. The asset is appended to the
// known assets of the distributor when seen for the first time. An invalid
// policy fails with ErrInvalidAllocation and leaves the state untouched.
func (c *Controller) SetPolicy(db tokendist.KVStore, id []byte, asset tokendist.Address, p *Policy) error {
	if err := p.Validate(); err != nil {
		return err
	}
	d, err := c.distributors.GetDistributor(db, id)
	if err != nil {
		return err
	}
	if err := c.policies.SetPolicy(db, id, asset, p); err != nil {
		return errors.Wrap(err, "cannot save policy")
	}
	if d.HasAsset(asset) {
		return nil
	}
	d.Assets = append(d.Assets, asset)
	if err := c.distributors.Update(db, id, d); err != nil {
		return errors.Wrap(err, "cannot save distributor")
	}
	return nil
}

// GetPolicy returns the policy of given asset. ErrNotFound is returned when
// no policy was set for that asset.
func (c *Controller) GetPolicy(db tokendist.ReadOnlyKVStore, id []byte, asset tokendist.Address) (*Policy, error) {
	if _, err := c.distributors.GetDistributor(db, id); err != nil {
		return nil, err
	}
	return c.policies.GetPolicy(db, id, asset)
}

// KnownAssets returns every asset that a policy was set for, in the order
// they were first configured.
func (c *Controller) KnownAssets(db tokendist.ReadOnlyKVStore, id []byte) ([]tokendist.Address, error) {
	d, err := c.distributors.GetDistributor(db, id)
	if err != nil {
		return nil, err
	}
	return d.Assets, nil
}

// Balance returns the custody balance of given asset.
func (c *Controller) Balance(db tokendist.ReadOnlyKVStore, id []byte, asset tokendist.Address) (coin.Amount, error) {
	if _, err := c.distributors.GetDistributor(db, id); err != nil {
		return coin.Amount{}, err
	}
	return c.cash.Balance(db, DistributorAddress(id), asset)
}

// Payout is a single transfer made by an execution.
type Payout struct {
	Receiver tokendist.Address
	Amount   coin.Amount
}

// Execution is the outcome of a successful execution.
type Execution struct {
	// Distributed is the sum of all payouts, not including the fee.
	Distributed coin.Amount
	// Fee is the amount paid to the executor.
	Fee coin.Amount
	// Payouts lists every transfer made to a receiver. Receivers whose
	// share rounds down to zero are not listed.
	Payouts []Payout
}

// Execute pays out the custody balance of given asset according to its
// policy. The claimed policy must be equal to the stored one. The balance
// must reach the threshold and cover the fee. The fee is paid to the
// executor first and the rest is split between receivers, each receiving
// the floor of its share. The rounding leftover stays in custody.
//
// Execute writes partial state on failure, run it inside a savepoint.
func (c *Controller) Execute(db tokendist.KVStore, id []byte, asset tokendist.Address, claimed *Policy, fee coin.Amount) (*Execution, error) {
	d, p, distributable, err := c.prepare(db, id, asset, claimed, fee)
	if err != nil {
		return nil, err
	}

	if fee.IsPositive() {
		if err := c.cash.MoveCoins(db, d.Address, d.Executor, asset, fee); err != nil {
			return nil, errors.Wrap(err, "cannot pay fee")
		}
	}

	ex := Execution{Fee: fee}
	for i, r := range p.Receivers {
		amount := distributable.MulBasisPoints(p.Shares[i])
		if amount.IsZero() {
			continue
		}
		if err := c.cash.MoveCoins(db, d.Address, r, asset, amount); err != nil {
			return nil, errors.Wrapf(err, "cannot pay receiver %d", i)
		}
		ex.Distributed = ex.Distributed.Add(amount)
		ex.Payouts = append(ex.Payouts, Payout{Receiver: r, Amount: amount})
	}
	return &ex, nil
}

// CanExecute returns the error Execute would fail with before moving any
// coins, or nil.
func (c *Controller) CanExecute(db tokendist.ReadOnlyKVStore, id []byte, asset tokendist.Address, claimed *Policy, fee coin.Amount) error {
	_, _, _, err := c.prepare(db, id, asset, claimed, fee)
	return err
}

// prepare checks the execution preconditions in order and returns the
// amount left for the receivers once the fee is paid.
func (c *Controller) prepare(db tokendist.ReadOnlyKVStore, id []byte, asset tokendist.Address, claimed *Policy, fee coin.Amount) (*Distributor, *Policy, coin.Amount, error) {
	var none coin.Amount
	d, err := c.distributors.GetDistributor(db, id)
	if err != nil {
		return nil, nil, none, err
	}
	p, err := c.policies.GetPolicy(db, id, asset)
	switch {
	case errors.ErrNotFound.Is(err):
		return nil, nil, none, errors.Wrapf(ErrPolicyMismatch, "no policy for asset %s", asset)
	case err != nil:
		return nil, nil, none, err
	}
	if !p.Equals(claimed) {
		return nil, nil, none, errors.Wrap(ErrPolicyMismatch, "policy was changed")
	}

	balance, err := c.cash.Balance(db, d.Address, asset)
	if err != nil {
		return nil, nil, none, errors.Wrap(err, "cannot read balance")
	}
	if !balance.IsGTE(p.Threshold) {
		return nil, nil, none, errors.Wrapf(ErrThresholdNotReached, "balance %s, threshold %s", balance, p.Threshold)
	}
	distributable, err := balance.Sub(fee)
	if err != nil {
		return nil, nil, none, errors.Wrapf(ErrFeeExceedsBalance, "balance %s, fee %s", balance, fee)
	}
	return d, p, distributable, nil
}

// Withdraw moves the whole custody balance of given asset to the owner. An
// empty balance is not an error, nothing is moved and a zero amount is
// returned.
func (c *Controller) Withdraw(db tokendist.KVStore, id []byte, asset tokendist.Address) (coin.Amount, error) {
	d, err := c.distributors.GetDistributor(db, id)
	if err != nil {
		return coin.Amount{}, err
	}
	balance, err := c.cash.Balance(db, d.Address, asset)
	if err != nil {
		return coin.Amount{}, errors.Wrap(err, "cannot read balance")
	}
	if balance.IsZero() {
		return balance, nil
	}
	if err := c.cash.MoveCoins(db, d.Address, d.Owner, asset, balance); err != nil {
		return coin.Amount{}, errors.Wrap(err, "cannot withdraw")
	}
	return balance, nil
}

// TransferOwnership sets a new owner. The creator is not changed, so the
// previous owner still cannot create another distributor.
func (c *Controller) TransferOwnership(db tokendist.KVStore, id []byte, owner tokendist.Address) error {
	if err := owner.Validate(); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	d, err := c.distributors.GetDistributor(db, id)
	if err != nil {
		return err
	}
	d.Owner = owner
	if err := c.distributors.Update(db, id, d); err != nil {
		return errors.Wrap(err, "cannot save distributor")
	}
	return nil
}

// SetFactory stores the factory configuration.
func (c *Controller) SetFactory(db tokendist.KVStore, f *Factory) error {
	return c.factory.SetFactory(db, f)
}

// GetFactory returns the factory configuration.
func (c *Controller) GetFactory(db tokendist.ReadOnlyKVStore) (*Factory, error) {
	return c.factory.GetFactory(db)
}
