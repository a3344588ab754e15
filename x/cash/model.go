package cash

import (
	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/coin"
	"github.com/iov-one/tokendist/errors"
	"github.com/iov-one/tokendist/orm"
	amino "github.com/tendermint/go-amino"
)

// BucketName is where we store the balances
const BucketName = "cash"

// Holding is the amount of a single asset kept by a single holder.
type Holding struct {
	Amount coin.Amount `json:"amount"`
}

var _ orm.CloneableData = (*Holding)(nil)

// Validate is a no-op, any amount (including zero) is a valid holding.
func (h *Holding) Validate() error {
	return nil
}

// Copy makes a new holding with the same amount.
func (h *Holding) Copy() orm.CloneableData {
	return &Holding{Amount: h.Amount}
}

func (h *Holding) Marshal() ([]byte, error) {
	return amino.MarshalBinaryBare(h)
}

func (h *Holding) Unmarshal(raw []byte) error {
	return amino.UnmarshalBinaryBare(raw, h)
}

// HoldingKey returns the primary key of the holding of given asset by given
// holder. Keys of one holder share the holder prefix, so all assets of a
// holder can be listed with a prefix query.
func HoldingKey(holder, asset tokendist.Address) []byte {
	key := make([]byte, 0, len(holder)+len(asset))
	key = append(key, holder...)
	return append(key, asset...)
}

// SplitHoldingKey is the inverse of HoldingKey.
func SplitHoldingKey(key []byte) (holder, asset tokendist.Address, err error) {
	if len(key) != 2*tokendist.AddressLength {
		return nil, nil, errors.Wrapf(errors.ErrInput, "invalid holding key length %d", len(key))
	}
	return tokendist.Address(key[:tokendist.AddressLength]), tokendist.Address(key[tokendist.AddressLength:]), nil
}

// Bucket is a type-safe wrapper around orm.Bucket
type Bucket struct {
	orm.Bucket
}

// NewBucket initializes a cash.Bucket with default name
func NewBucket() Bucket {
	return Bucket{
		Bucket: orm.NewBucket(BucketName, orm.NewSimpleObj(nil, new(Holding))),
	}
}

// GetAmount returns the amount of the asset kept by the holder. A missing
// record is a zero amount.
func (b Bucket) GetAmount(db tokendist.ReadOnlyKVStore, holder, asset tokendist.Address) (coin.Amount, error) {
	obj, err := b.Get(db, HoldingKey(holder, asset))
	if err != nil {
		return coin.Amount{}, err
	}
	if obj == nil {
		return coin.Amount{}, nil
	}
	h, ok := obj.Value().(*Holding)
	if !ok {
		return coin.Amount{}, errors.WithType(errors.ErrModel, obj.Value())
	}
	return h.Amount, nil
}

// SetAmount stores the amount of the asset kept by the holder. Zero amounts
// are not stored.
func (b Bucket) SetAmount(db tokendist.KVStore, holder, asset tokendist.Address, amount coin.Amount) error {
	key := HoldingKey(holder, asset)
	if amount.IsZero() {
		return b.Delete(db, key)
	}
	return b.Save(db, orm.NewSimpleObj(key, &Holding{Amount: amount}))
}

// Holdings returns all non zero balances of the holder, ordered by asset.
func (b Bucket) Holdings(db tokendist.ReadOnlyKVStore, holder tokendist.Address) ([]coin.Coin, error) {
	objs, err := b.WithPrefix(db, holder)
	if err != nil {
		return nil, err
	}
	coins := make([]coin.Coin, 0, len(objs))
	for _, obj := range objs {
		_, asset, err := SplitHoldingKey(obj.Key())
		if err != nil {
			return nil, err
		}
		h, ok := obj.Value().(*Holding)
		if !ok {
			return nil, errors.WithType(errors.ErrModel, obj.Value())
		}
		coins = append(coins, coin.Coin{Asset: asset, Amount: h.Amount})
	}
	return coins, nil
}
