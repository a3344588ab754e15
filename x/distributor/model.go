package distributor

import (
	"strconv"

	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/coin"
	"github.com/iov-one/tokendist/errors"
	"github.com/iov-one/tokendist/orm"
	amino "github.com/tendermint/go-amino"
)

const (
	// MaxReceivers is the maximum number of receivers a single policy can
	// split the balance between.
	MaxReceivers = 200

	// idLength is the length of a distributor ID, a sequence value.
	idLength = 8
)

// Distributor holds custody of assets on behalf of its owner.
type Distributor struct {
	// Creator is the account that created this distributor. It never
	// changes, even when the ownership is transferred.
	Creator tokendist.Address `json:"creator"`
	// Owner is the only account that can change policies or withdraw.
	Owner tokendist.Address `json:"owner"`
	// Executor is the only account that can trigger payouts. It is
	// copied from the factory configuration at creation time.
	Executor tokendist.Address `json:"executor"`
	// Address is the custody account holding the funds.
	Address tokendist.Address `json:"address"`
	// Assets lists every asset a policy was ever set for, in the order
	// they were first configured.
	Assets []tokendist.Address `json:"assets"`
}

var _ orm.CloneableData = (*Distributor)(nil)

func (d *Distributor) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Creator", d.Creator.Validate())
	errs = errors.AppendField(errs, "Owner", d.Owner.Validate())
	errs = errors.AppendField(errs, "Executor", d.Executor.Validate())
	errs = errors.AppendField(errs, "Address", d.Address.Validate())
	seen := make(map[string]struct{}, len(d.Assets))
	for i, a := range d.Assets {
		if err := a.Validate(); err != nil {
			errs = errors.AppendField(errs, fieldIndex("Assets", i), err)
			continue
		}
		if _, ok := seen[string(a)]; ok {
			errs = errors.AppendField(errs, fieldIndex("Assets", i), errors.Wrap(errors.ErrDuplicate, "asset listed twice"))
		}
		seen[string(a)] = struct{}{}
	}
	return errs
}

func (d *Distributor) Copy() orm.CloneableData {
	assets := make([]tokendist.Address, len(d.Assets))
	for i, a := range d.Assets {
		assets[i] = a.Clone()
	}
	return &Distributor{
		Creator:  d.Creator.Clone(),
		Owner:    d.Owner.Clone(),
		Executor: d.Executor.Clone(),
		Address:  d.Address.Clone(),
		Assets:   assets,
	}
}

func (d *Distributor) Marshal() ([]byte, error) {
	return amino.MarshalBinaryBare(d)
}

func (d *Distributor) Unmarshal(raw []byte) error {
	return amino.UnmarshalBinaryBare(raw, d)
}

// HasAsset returns true if a policy for given asset was ever set.
func (d *Distributor) HasAsset(asset tokendist.Address) bool {
	for _, a := range d.Assets {
		if a.Equals(asset) {
			return true
		}
	}
	return false
}

// DistributorAddress returns the custody address of the distributor with
// given ID.
func DistributorAddress(id []byte) tokendist.Address {
	return tokendist.NewCondition("dist", "seq", id).Address()
}

// Policy describes how the balance of a single asset is distributed.
type Policy struct {
	// Threshold is the minimal balance that allows an execution.
	Threshold coin.Amount `json:"threshold"`
	// Receivers are paid their share of every execution.
	Receivers []tokendist.Address `json:"receivers"`
	// Shares are the parts of every execution, in basis points, that the
	// receiver of the same index is paid.
	Shares []uint32 `json:"shares"`
}

var _ orm.CloneableData = (*Policy)(nil)

// Validate returns ErrInvalidAllocation unless the receivers are distinct
// and valid and their shares sum up to the whole amount.
func (p *Policy) Validate() error {
	switch n := len(p.Receivers); {
	case n == 0:
		return errors.Wrap(ErrInvalidAllocation, "no receivers")
	case n > MaxReceivers:
		return errors.Wrapf(ErrInvalidAllocation, "too many receivers, max %d", MaxReceivers)
	case n != len(p.Shares):
		return errors.Wrapf(ErrInvalidAllocation, "%d receivers, %d shares", n, len(p.Shares))
	}

	seen := make(map[string]struct{}, len(p.Receivers))
	for i, r := range p.Receivers {
		if err := r.Validate(); err != nil {
			return errors.Wrapf(ErrInvalidAllocation, "receiver %d: %s", i, err)
		}
		if _, ok := seen[string(r)]; ok {
			return errors.Wrapf(ErrInvalidAllocation, "receiver %s listed twice", r)
		}
		seen[string(r)] = struct{}{}
	}

	// Shares are summed as uint64 so that no combination of uint32 values
	// can overflow and wrap around to a valid total.
	var sum uint64
	for _, s := range p.Shares {
		sum += uint64(s)
	}
	if sum != coin.BasisPointsTotal {
		return errors.Wrapf(ErrInvalidAllocation, "shares sum up to %d, not %d", sum, coin.BasisPointsTotal)
	}
	return nil
}

func (p *Policy) Copy() orm.CloneableData {
	receivers := make([]tokendist.Address, len(p.Receivers))
	for i, r := range p.Receivers {
		receivers[i] = r.Clone()
	}
	return &Policy{
		Threshold: p.Threshold,
		Receivers: receivers,
		Shares:    append([]uint32(nil), p.Shares...),
	}
}

func (p *Policy) Marshal() ([]byte, error) {
	return amino.MarshalBinaryBare(p)
}

func (p *Policy) Unmarshal(raw []byte) error {
	return amino.UnmarshalBinaryBare(raw, p)
}

// Equals returns true if both policies have the same threshold and the same
// receivers with the same shares, in the same order.
func (p *Policy) Equals(o *Policy) bool {
	if p == nil || o == nil {
		return p == o
	}
	if !p.Threshold.Equals(o.Threshold) {
		return false
	}
	if len(p.Receivers) != len(o.Receivers) || len(p.Shares) != len(o.Shares) {
		return false
	}
	for i := range p.Receivers {
		if !p.Receivers[i].Equals(o.Receivers[i]) {
			return false
		}
	}
	for i := range p.Shares {
		if p.Shares[i] != o.Shares[i] {
			return false
		}
	}
	return true
}

// Factory is the configuration shared by all distributors.
type Factory struct {
	// Executor is granted the right to trigger payouts of every
	// distributor created while it is configured.
	Executor tokendist.Address `json:"executor"`
}

var _ orm.CloneableData = (*Factory)(nil)

func (f *Factory) Validate() error {
	return errors.AppendField(nil, "Executor", f.Executor.Validate())
}

func (f *Factory) Copy() orm.CloneableData {
	return &Factory{Executor: f.Executor.Clone()}
}

func (f *Factory) Marshal() ([]byte, error) {
	return amino.MarshalBinaryBare(f)
}

func (f *Factory) Unmarshal(raw []byte) error {
	return amino.UnmarshalBinaryBare(raw, f)
}

// DistributorBucket stores distributors under their sequence IDs, so that
// iterating over the bucket returns them in creation order.
type DistributorBucket struct {
	orm.Bucket
	idSeq orm.Sequence
}

// NewDistributorBucket returns a bucket with a unique index by the creator
// and a non unique index by the owner.
func NewDistributorBucket() DistributorBucket {
	b := orm.NewBucket("dist", orm.NewSimpleObj(nil, new(Distributor))).
		WithIndex("creator", creatorIndex, true).
		WithIndex("owner", ownerIndex, false)
	return DistributorBucket{
		Bucket: b,
		idSeq:  b.Sequence("id"),
	}
}

func creatorIndex(obj orm.Object) ([]byte, error) {
	d, err := asDistributor(obj)
	if err != nil {
		return nil, err
	}
	return d.Creator, nil
}

func ownerIndex(obj orm.Object) ([]byte, error) {
	d, err := asDistributor(obj)
	if err != nil {
		return nil, err
	}
	return d.Owner, nil
}

func asDistributor(obj orm.Object) (*Distributor, error) {
	if obj == nil {
		return nil, errors.Wrap(errors.ErrHuman, "cannot take index of nil")
	}
	d, ok := obj.Value().(*Distributor)
	if !ok {
		return nil, errors.WithType(errors.ErrModel, obj.Value())
	}
	return d, nil
}

// Create assigns the next ID to the distributor and saves it. A creator
// that already has a distributor gets ErrDuplicate and no ID is used up.
func (b DistributorBucket) Create(db tokendist.KVStore, d *Distributor) ([]byte, error) {
	taken, err := b.GetIndexed(db, "creator", d.Creator)
	if err != nil {
		return nil, err
	}
	if len(taken) != 0 {
		return nil, errors.Wrapf(errors.ErrDuplicate, "creator %s", d.Creator)
	}
	id, err := b.idSeq.NextVal(db)
	if err != nil {
		return nil, errors.Wrap(err, "id sequence")
	}
	d.Address = DistributorAddress(id)
	if err := b.Save(db, orm.NewSimpleObj(id, d)); err != nil {
		return nil, err
	}
	return id, nil
}

// GetDistributor returns the distributor with given ID or ErrNotFound.
func (b DistributorBucket) GetDistributor(db tokendist.ReadOnlyKVStore, id []byte) (*Distributor, error) {
	obj, err := b.Get(db, id)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "distributor %X", id)
	}
	return asDistributor(obj)
}

// Update saves an existing distributor.
func (b DistributorBucket) Update(db tokendist.KVStore, id []byte, d *Distributor) error {
	return b.Save(db, orm.NewSimpleObj(id, d))
}

// CreatedBy returns the ID of the distributor created by given account. It
// returns ErrNotFound if the account did not create one.
func (b DistributorBucket) CreatedBy(db tokendist.ReadOnlyKVStore, creator tokendist.Address) ([]byte, *Distributor, error) {
	objs, err := b.GetIndexed(db, "creator", creator)
	if err != nil {
		return nil, nil, err
	}
	if len(objs) == 0 {
		return nil, nil, errors.Wrapf(errors.ErrNotFound, "creator %s", creator)
	}
	d, err := asDistributor(objs[0])
	if err != nil {
		return nil, nil, err
	}
	return objs[0].Key(), d, nil
}

// PolicyBucket stores one policy per distributor and asset.
type PolicyBucket struct {
	orm.Bucket
}

// NewPolicyBucket returns a bucket keyed by the distributor ID followed by
// the asset, so that the policies of a distributor share a prefix.
func NewPolicyBucket() PolicyBucket {
	return PolicyBucket{
		Bucket: orm.NewBucket("policy", orm.NewSimpleObj(nil, new(Policy))),
	}
}

// PolicyKey returns the primary key of the policy of given asset.
func PolicyKey(id []byte, asset tokendist.Address) []byte {
	key := make([]byte, 0, len(id)+len(asset))
	key = append(key, id...)
	return append(key, asset...)
}

// GetPolicy returns the policy of given asset or ErrNotFound.
func (b PolicyBucket) GetPolicy(db tokendist.ReadOnlyKVStore, id []byte, asset tokendist.Address) (*Policy, error) {
	obj, err := b.Get(db, PolicyKey(id, asset))
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "no policy for asset %s", asset)
	}
	p, ok := obj.Value().(*Policy)
	if !ok {
		return nil, errors.WithType(errors.ErrModel, obj.Value())
	}
	return p, nil
}

// SetPolicy validates and stores the policy, replacing any previous one.
func (b PolicyBucket) SetPolicy(db tokendist.KVStore, id []byte, asset tokendist.Address, p *Policy) error {
	return b.Save(db, orm.NewSimpleObj(PolicyKey(id, asset), p))
}

// FactoryBucket holds the single factory configuration.
type FactoryBucket struct {
	orm.Bucket
}

var factoryKey = []byte("main")

// NewFactoryBucket returns a bucket for the factory configuration.
func NewFactoryBucket() FactoryBucket {
	return FactoryBucket{
		Bucket: orm.NewBucket("factory", orm.NewSimpleObj(nil, new(Factory))),
	}
}

// GetFactory returns the factory configuration. It fails with ErrState when
// none was loaded from genesis.
func (b FactoryBucket) GetFactory(db tokendist.ReadOnlyKVStore) (*Factory, error) {
	obj, err := b.Get(db, factoryKey)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.Wrap(errors.ErrState, "factory is not configured")
	}
	f, ok := obj.Value().(*Factory)
	if !ok {
		return nil, errors.WithType(errors.ErrModel, obj.Value())
	}
	return f, nil
}

// SetFactory stores the factory configuration.
func (b FactoryBucket) SetFactory(db tokendist.KVStore, f *Factory) error {
	return b.Save(db, orm.NewSimpleObj(factoryKey, f))
}

func fieldIndex(name string, i int) string {
	return name + "." + strconv.Itoa(i)
}
