package app

import (
	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/errors"
)

// CommitStore keeps two independent caches over the committed state: one
// for the block being delivered and one for CheckTx. Both are rebuilt on
// every commit, so CheckTx always runs against the latest block.
type CommitStore struct {
	committed tokendist.CommitKVStore
	deliver   tokendist.KVCacheWrap
	check     tokendist.KVCacheWrap
}

// NewCommitStore loads the latest version of the store.
func NewCommitStore(kv tokendist.CommitKVStore) (*CommitStore, error) {
	if err := kv.LoadLatestVersion(); err != nil {
		return nil, errors.Wrap(err, "load latest version")
	}
	cs := &CommitStore{committed: kv}
	cs.reset()
	return cs, nil
}

func (cs *CommitStore) reset() {
	cs.deliver = cs.committed.CacheWrap()
	cs.check = cs.committed.CacheWrap()
}

// CommitInfo returns the height and hash of the last commit.
func (cs *CommitStore) CommitInfo() (tokendist.CommitID, error) {
	return cs.committed.LatestVersion()
}

// Commit persists everything written to the deliver cache. Changes only
// made to the check cache are dropped.
func (cs *CommitStore) Commit() (tokendist.CommitID, error) {
	if err := cs.deliver.Write(); err != nil {
		return tokendist.CommitID{}, errors.Wrap(err, "flush deliver cache")
	}
	cs.check.Discard()
	id, err := cs.committed.Commit()
	if err != nil {
		return id, err
	}
	cs.reset()
	return id, nil
}

func (cs *CommitStore) CheckStore() tokendist.CacheableKVStore {
	return cs.check
}

func (cs *CommitStore) DeliverStore() tokendist.CacheableKVStore {
	return cs.deliver
}

// CommittedStore returns a view of the last committed state. Writes made to
// it are never persisted.
func (cs *CommitStore) CommittedStore() tokendist.ReadOnlyKVStore {
	return cs.committed.CacheWrap()
}

// chainIDKey is reserved. No bucket may be named "_td".
const chainIDKey = "_td:chainID"

func loadChainID(db tokendist.ReadOnlyKVStore) (string, error) {
	raw, err := db.Get([]byte(chainIDKey))
	if err != nil {
		return "", errors.Wrap(err, "load chain id")
	}
	return string(raw), nil
}

// saveChainID stores the chain ID. It can be set only once.
func saveChainID(db tokendist.KVStore, chainID string) error {
	if !tokendist.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}
	switch ok, err := db.Has([]byte(chainIDKey)); {
	case err != nil:
		return errors.Wrap(err, "load chain id")
	case ok:
		return errors.Wrap(errors.ErrImmutable, "chain id already set")
	}
	return errors.Wrap(db.Set([]byte(chainIDKey), []byte(chainID)), "save chain id")
}
