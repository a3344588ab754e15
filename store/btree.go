package store

import (
	"bytes"

	"github.com/google/btree"
)

// BTreeCacheable turns any KVStore into a CacheableKVStore by caching
// writes in a btree.
type BTreeCacheable struct {
	KVStore
}

var _ CacheableKVStore = BTreeCacheable{}

// CacheWrap returns a cache that is flushed to the store with Write.
func (b BTreeCacheable) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b.KVStore, b.NewBatch(), nil)
}

// MemStore returns an in memory store without any persistence. It is meant
// for tests.
func MemStore() CacheableKVStore {
	var empty EmptyKVStore
	return NewBTreeCacheWrap(empty, empty.NewBatch(), nil)
}

// BTreeCacheWrap keeps all writes in a btree, in front of a read only
// store. Reads are served from the btree first. Write flushes the changes
// into the batch and empties the cache.
type BTreeCacheWrap struct {
	tree  *btree.BTree
	free  *btree.FreeList
	back  ReadOnlyKVStore
	batch Batch
}

var _ KVCacheWrap = BTreeCacheWrap{}

// NewBTreeCacheWrap returns a cache over back, recording the writes into
// batch. Layered caches may share a free list. A nil free list allocates a
// new one.
func NewBTreeCacheWrap(back ReadOnlyKVStore, batch Batch, free *btree.FreeList) BTreeCacheWrap {
	if free == nil {
		free = btree.NewFreeList(btree.DefaultFreeListSize)
	}
	return BTreeCacheWrap{
		tree:  btree.NewWithFreeList(2, free),
		free:  free,
		back:  back,
		batch: batch,
	}
}

// CacheWrap layers another cache on top of this one.
func (b BTreeCacheWrap) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b, b.NewBatch(), b.free)
}

func (b BTreeCacheWrap) NewBatch() Batch {
	return NewNonAtomicBatch(b)
}

// Write flushes the batch and releases the cached entries.
func (b BTreeCacheWrap) Write() error {
	defer b.Discard()
	return b.batch.Write()
}

// Discard drops all cached entries.
func (b BTreeCacheWrap) Discard() {
	b.tree.Clear(true)
}

func (b BTreeCacheWrap) Set(key, value []byte) error {
	b.tree.ReplaceOrInsert(cacheEntry{key: key, value: value})
	return b.batch.Set(key, value)
}

func (b BTreeCacheWrap) Delete(key []byte) error {
	b.tree.ReplaceOrInsert(cacheEntry{key: key, deleted: true})
	return b.batch.Delete(key)
}

func (b BTreeCacheWrap) Get(key []byte) ([]byte, error) {
	e, ok := b.cached(key)
	if !ok {
		return b.back.Get(key)
	}
	return e.value, nil
}

func (b BTreeCacheWrap) Has(key []byte) (bool, error) {
	e, ok := b.cached(key)
	if !ok {
		return b.back.Has(key)
	}
	return !e.deleted, nil
}

// cached returns the cache entry of the key, if there is one.
func (b BTreeCacheWrap) cached(key []byte) (cacheEntry, bool) {
	item := b.tree.Get(cacheEntry{key: key})
	if item == nil {
		return cacheEntry{}, false
	}
	return item.(cacheEntry), true
}

// Iterator merges the cached entries within [start, end) with the backing
// store, in ascending order.
func (b BTreeCacheWrap) Iterator(start, end []byte) (Iterator, error) {
	parent, err := b.back.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	return newMergedIterator(ascendItems(b.tree, start, end), parent, false)
}

// ReverseIterator is Iterator in descending order.
func (b BTreeCacheWrap) ReverseIterator(start, end []byte) (Iterator, error) {
	parent, err := b.back.ReverseIterator(start, end)
	if err != nil {
		return nil, err
	}
	return newMergedIterator(descendItems(b.tree, start, end), parent, true)
}

// cacheEntry is a write recorded by the cache. A deleted entry hides the
// value of the backing store.
type cacheEntry struct {
	key     []byte
	value   []byte
	deleted bool
}

func (e cacheEntry) Less(than btree.Item) bool {
	return bytes.Compare(e.key, than.(cacheEntry).key) < 0
}
