package store

import "github.com/iov-one/tokendist"

// Move references for all storage types into this package
// for shorter names everywhere

type (
	ReadOnlyKVStore  = tokendist.ReadOnlyKVStore
	SetDeleter       = tokendist.SetDeleter
	KVStore          = tokendist.KVStore
	Batch            = tokendist.Batch
	Iterator         = tokendist.Iterator
	CacheableKVStore = tokendist.CacheableKVStore
	KVCacheWrap      = tokendist.KVCacheWrap
	CommitKVStore    = tokendist.CommitKVStore
	CommitID         = tokendist.CommitID
	Model            = tokendist.Model
)
