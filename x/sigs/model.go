package sigs

import (
	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/crypto"
	"github.com/iov-one/tokendist/errors"
	"github.com/iov-one/tokendist/orm"
	amino "github.com/tendermint/go-amino"
)

// BucketName is the name of the bucket holding the signing state.
const BucketName = "sigs"

// maxSequenceValue is the largest integer a javascript client can represent
// exactly.
const maxSequenceValue = (1 << 53) - 1

// UserData is the signing state of a public key, stored under the address of
// the key. Sequence is the value the next signature must be created with.
type UserData struct {
	Pubkey   *crypto.PublicKey `json:"pubkey"`
	Sequence int64             `json:"sequence"`
}

var _ orm.CloneableData = (*UserData)(nil)

func (u *UserData) Validate() error {
	var errs error
	switch {
	case u.Sequence < 0:
		errs = errors.AppendField(errs, "Sequence", ErrInvalidSequence)
	case u.Sequence > 0 && u.Pubkey == nil:
		errs = errors.Append(errs, errors.Field("Sequence", ErrInvalidSequence, "needs Pubkey"))
	}
	if u.Pubkey != nil {
		errs = errors.AppendField(errs, "Pubkey", u.Pubkey.Validate())
	}
	return errs
}

func (u *UserData) Copy() orm.CloneableData {
	cpy := *u
	return &cpy
}

func (u *UserData) Marshal() ([]byte, error) {
	return amino.MarshalBinaryBare(u)
}

func (u *UserData) Unmarshal(raw []byte) error {
	return amino.UnmarshalBinaryBare(raw, u)
}

// CheckAndIncrementSequence consumes the expected sequence value. It fails
// if the current sequence is different.
func (u *UserData) CheckAndIncrementSequence(expected int64) error {
	if u.Sequence != expected {
		return errors.Wrapf(ErrInvalidSequence, "mismatch expected %d, got %d", expected, u.Sequence)
	}
	if u.Sequence >= maxSequenceValue {
		return errors.Wrap(errors.ErrOverflow, "sequence out of range")
	}
	u.Sequence++
	return nil
}

// AsUser returns the UserData held by obj, or nil.
func AsUser(obj orm.Object) *UserData {
	if obj == nil || obj.Value() == nil {
		return nil
	}
	return obj.Value().(*UserData)
}

// NewUser returns the initial signing state of the key.
func NewUser(pubkey *crypto.PublicKey) orm.Object {
	var addr tokendist.Address
	if pubkey != nil {
		addr = pubkey.Address()
	}
	return orm.NewSimpleObj(addr, &UserData{Pubkey: pubkey})
}

// Bucket stores UserData by the address of the key.
type Bucket struct {
	orm.Bucket
}

func NewBucket() Bucket {
	return Bucket{Bucket: orm.NewBucket(BucketName, NewUser(nil))}
}

// GetOrCreate loads the signing state of the key. A key that never signed
// gets a fresh state that is not saved yet.
func (b Bucket) GetOrCreate(db tokendist.ReadOnlyKVStore, pubkey *crypto.PublicKey) (orm.Object, error) {
	obj, err := b.Get(db, pubkey.Address())
	if err != nil {
		return nil, err
	}
	if obj == nil {
		obj = NewUser(pubkey)
	}
	return obj, nil
}

// NextNonce returns the sequence the next signature of the signer must be
// created with. A signer that never signed starts with zero.
func NextNonce(db tokendist.ReadOnlyKVStore, signer tokendist.Address) (int64, error) {
	obj, err := NewBucket().Get(db, signer)
	if err != nil {
		return 0, errors.Wrap(err, "bucket get")
	}
	if u := AsUser(obj); u != nil {
		return u.Sequence, nil
	}
	return 0, nil
}
