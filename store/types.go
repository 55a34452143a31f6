package store

import "github.com/iov-one/paygate"

// Move references for all storage types into this package
// for shorter names everywhere

type (
	ReadOnlyKVStore  = paygate.ReadOnlyKVStore
	SetDeleter       = paygate.SetDeleter
	KVStore          = paygate.KVStore
	Batch            = paygate.Batch
	Iterator         = paygate.Iterator
	CacheableKVStore = paygate.CacheableKVStore
	KVCacheWrap      = paygate.KVCacheWrap
	CommitKVStore    = paygate.CommitKVStore
	CommitID         = paygate.CommitID
	Model            = paygate.Model
)
