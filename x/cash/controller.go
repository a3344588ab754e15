package cash

import (
	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/coin"
	"github.com/iov-one/tokendist/errors"
)

// Controller is the functionality needed by other extensions to move
// custody balances.
type Controller interface {
	// Balance returns the amount of given asset kept by the holder.
	Balance(db tokendist.ReadOnlyKVStore, holder, asset tokendist.Address) (coin.Amount, error)

	// MoveCoins moves the given amount from src to dest. It fails if src
	// does not have sufficient coins.
	MoveCoins(db tokendist.KVStore, src, dest, asset tokendist.Address, amount coin.Amount) error

	// IssueCoins creates coins out of thin air and assigns them to dest.
	IssueCoins(db tokendist.KVStore, dest, asset tokendist.Address, amount coin.Amount) error
}

// BaseController is a simple implementation of the Controller interface
// operating on a single bucket.
type BaseController struct {
	bucket Bucket
}

var _ Controller = BaseController{}

// NewController returns a controller using given bucket.
func NewController(bucket Bucket) BaseController {
	return BaseController{bucket: bucket}
}

func (c BaseController) Balance(db tokendist.ReadOnlyKVStore, holder, asset tokendist.Address) (coin.Amount, error) {
	if err := holder.Validate(); err != nil {
		return coin.Amount{}, errors.Wrap(err, "holder")
	}
	return c.bucket.GetAmount(db, holder, asset)
}

func (c BaseController) MoveCoins(db tokendist.KVStore, src, dest, asset tokendist.Address, amount coin.Amount) error {
	if !amount.IsPositive() {
		return errors.Wrap(errors.ErrAmount, "non-positive amount")
	}
	if err := src.Validate(); err != nil {
		return errors.Wrap(err, "source")
	}
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	if err := asset.Validate(); err != nil {
		return errors.Wrap(err, "asset")
	}

	have, err := c.bucket.GetAmount(db, src, asset)
	if err != nil {
		return err
	}
	left, err := have.Sub(amount)
	if err != nil {
		return errors.Wrapf(errors.ErrAmount, "insufficient funds: have %s, want %s", have, amount)
	}
	if err := c.bucket.SetAmount(db, src, asset, left); err != nil {
		return errors.Wrap(err, "source")
	}

	// Read the destination after the source was written, so that moving
	// coins to self is a no-op.
	got, err := c.bucket.GetAmount(db, dest, asset)
	if err != nil {
		return err
	}
	sum := got.Add(amount)
	if err := sum.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	if err := c.bucket.SetAmount(db, dest, asset, sum); err != nil {
		return errors.Wrap(err, "destination")
	}
	return nil
}

func (c BaseController) IssueCoins(db tokendist.KVStore, dest, asset tokendist.Address, amount coin.Amount) error {
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	if err := asset.Validate(); err != nil {
		return errors.Wrap(err, "asset")
	}
	got, err := c.bucket.GetAmount(db, dest, asset)
	if err != nil {
		return err
	}
	sum := got.Add(amount)
	if err := sum.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	return c.bucket.SetAmount(db, dest, asset, sum)
}
