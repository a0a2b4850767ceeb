package barter

import "github.com/iov-one/barter/store"

// Move references for all storage types into the root package so that
// extensions do not need to import the store implementation.

type ReadOnlyKVStore = store.ReadOnlyKVStore
type SetDeleter = store.SetDeleter
type KVStore = store.KVStore
type Batch = store.Batch
type Iterator = store.Iterator
type CacheableKVStore = store.CacheableKVStore
type KVCacheWrap = store.KVCacheWrap
type CommitKVStore = store.CommitKVStore
type CommitID = store.CommitID
