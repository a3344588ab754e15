package distributor

import (
	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/errors"
)

const optKey = "distributor"

// Initializer loads the factory configuration from the genesis file.
//
//	"distributor": {"executor": "<hex address>"}
type Initializer struct{}

var _ tokendist.Initializer = Initializer{}

// FromGenesis stores the factory configuration. A missing section leaves
// the factory unconfigured and every create fails.
func (Initializer) FromGenesis(opts tokendist.Options, db tokendist.KVStore) error {
	var f Factory
	if err := opts.ReadOptions(optKey, &f); err != nil {
		return err
	}
	if f.Executor == nil {
		return nil
	}
	if err := f.Validate(); err != nil {
		return errors.Wrap(err, "factory")
	}
	return NewFactoryBucket().SetFactory(db, &f)
}
