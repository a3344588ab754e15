package utils

import (
	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/errors"
)

// Savepoint runs the rest of the chain on a cache of the store. The cache
// is written back only if the chain succeeds, so a failed distribution
// leaves no partial payouts behind.
//
// A new Savepoint is inactive. Enable it with OnCheck or OnDeliver.
type Savepoint struct {
	onCheck   bool
	onDeliver bool
}

var _ tokendist.Decorator = Savepoint{}

func NewSavepoint() Savepoint {
	return Savepoint{}
}

func (s Savepoint) OnCheck() Savepoint {
	s.onCheck = true
	return s
}

func (s Savepoint) OnDeliver() Savepoint {
	s.onDeliver = true
	return s
}

func (s Savepoint) Check(ctx tokendist.Context, db tokendist.KVStore, tx tokendist.Tx, next tokendist.Checker) (*tokendist.CheckResult, error) {
	if !s.onCheck {
		return next.Check(ctx, db, tx)
	}
	var res *tokendist.CheckResult
	err := withCache(db, func(cache tokendist.KVStore) (err error) {
		res, err = next.Check(ctx, cache, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s Savepoint) Deliver(ctx tokendist.Context, db tokendist.KVStore, tx tokendist.Tx, next tokendist.Deliverer) (*tokendist.DeliverResult, error) {
	if !s.onDeliver {
		return next.Deliver(ctx, db, tx)
	}
	var res *tokendist.DeliverResult
	err := withCache(db, func(cache tokendist.KVStore) (err error) {
		res, err = next.Deliver(ctx, cache, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// withCache calls fn with a cache of db and writes the cache when fn
// succeeds. A store that cannot be cached is given to fn directly.
func withCache(db tokendist.KVStore, fn func(tokendist.KVStore) error) error {
	cacheable, ok := db.(tokendist.CacheableKVStore)
	if !ok {
		return fn(db)
	}
	cache := cacheable.CacheWrap()
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	return errors.Wrap(cache.Write(), "write savepoint")
}
