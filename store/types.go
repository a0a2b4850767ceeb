package store

// ReadOnlyKVStore reads a sorted key value space. Nil keys are not
// allowed.
type ReadOnlyKVStore interface {
	// Get returns nil for a missing key.
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)

	// Iterator walks [start, end) in ascending order. A nil bound is
	// open. The range must not be written to while the iterator is used.
	Iterator(start, end []byte) (Iterator, error)
	// ReverseIterator walks [start, end) in descending order.
	ReverseIterator(start, end []byte) (Iterator, error)
}

// SetDeleter is the write half shared by stores and batches. Callers must
// not modify keys or values after passing them in.
type SetDeleter interface {
	Set(key, value []byte) error
	Delete(key []byte) error
}

// KVStore is the interface every backing store implements.
type KVStore interface {
	ReadOnlyKVStore
	SetDeleter
	NewBatch() Batch
}

// Batch collects writes and applies them with Write.
type Batch interface {
	SetDeleter
	Write() error
}

// Iterator is a cursor over a key range:
//
//   it, err := db.Iterator(start, end)
//   ...
//   defer it.Close()
//   for ; it.Valid(); it.Next() {
//       use(it.Key(), it.Value())
//   }
//
// Key, Value and Next panic or fail once Valid returned false.
type Iterator interface {
	Valid() bool
	Next() error
	Key() []byte
	Value() []byte
	Close()
}

// CacheableKVStore can open a scratch pad on top of itself.
type CacheableKVStore interface {
	KVStore
	CacheWrap() KVCacheWrap
}

// KVCacheWrap buffers writes on top of a parent store, like a SQL
// savepoint. Reads see the buffered writes. Write flushes them to the
// parent, Discard drops them. Both leave the cache empty and usable.
type KVCacheWrap interface {
	CacheableKVStore
	Write() error
	Discard()
}

// CommitKVStore is a persistent, versioned root store. All changes go
// through a CacheWrap and become a new version on Commit.
type CommitKVStore interface {
	// Get reads the last committed state.
	Get(key []byte) ([]byte, error)
	CacheWrap() KVCacheWrap

	Commit() (CommitID, error)
	// LoadLatestVersion loads the newest version that was fully written.
	LoadLatestVersion() error
	LatestVersion() (CommitID, error)
}

// CommitID identifies a committed version by its height and merkle root.
type CommitID struct {
	Version int64
	Hash    []byte
}
