package tokendist

// ReadOnlyKVStore reads the application state. A nil key panics.
type ReadOnlyKVStore interface {
	// Get returns nil for a missing key.
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)

	// Iterator walks the keys within [start, end) in ascending order. A nil
	// bound is open. The range must not be written while the iterator is
	// in use.
	Iterator(start, end []byte) (Iterator, error)
	// ReverseIterator is Iterator in descending order.
	ReverseIterator(start, end []byte) (Iterator, error)
}

// SetDeleter writes the application state.
type SetDeleter interface {
	Set(key, value []byte) error
	Delete(key []byte) error
}

// KVStore is the store every handler operates on.
type KVStore interface {
	ReadOnlyKVStore
	SetDeleter
	NewBatch() Batch
}

// Batch collects writes that are applied together by Write.
type Batch interface {
	SetDeleter
	Write() error
}

// Iterator is a cursor over a range of keys. The returned slices must not be
// modified. Always Close an iterator.
//
//	it, err := db.Iterator(start, end)
//	...
//	defer it.Close()
//	for ; it.Valid(); err = it.Next() {
//		...
//	}
type Iterator interface {
	// Valid is false once the range is exhausted and stays false.
	Valid() bool
	// Next, Key and Value panic if the iterator is not valid.
	Next() error
	Key() []byte
	Value() []byte
	Close()
}

// CacheableKVStore can stage writes in a cache.
type CacheableKVStore interface {
	KVStore
	CacheWrap() KVCacheWrap
}

// KVCacheWrap is a cache of uncommitted writes, visible to all reads made
// through it. Write flushes it into the store it wraps. Discard drops it.
// A cache can be wrapped again.
type KVCacheWrap interface {
	CacheableKVStore
	Write() error
	Discard()
}

// CommitKVStore is the persistent root store of the application.
type CommitKVStore interface {
	// Get reads the last committed state.
	Get(key []byte) ([]byte, error)

	// CacheWrap stages writes for the next Commit.
	CacheWrap() KVCacheWrap

	// Commit persists all staged writes as the next version.
	Commit() (CommitID, error)

	// LoadLatestVersion restores the latest version that was completely
	// persisted.
	LoadLatestVersion() error
	LatestVersion() (CommitID, error)
}

// CommitID identifies a committed version of the state by its height and
// hash.
type CommitID struct {
	Version int64
	Hash    []byte
}
