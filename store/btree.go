package store

import (
	"bytes"

	"github.com/google/btree"
)

// degree of the cache trees. Caches are short lived and small.
const degree = 8

// BTreeCacheable adds btree based cache wraps to any KVStore.
type BTreeCacheable struct {
	KVStore
}

var _ CacheableKVStore = BTreeCacheable{}

// CacheWrap returns a cache that is written to the wrapped store on Write.
func (b BTreeCacheable) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b.KVStore)
}

// MemStore returns a store that lives only in memory. It is the default
// backend for tests and for simulations of the escrow flows.
func MemStore() CacheableKVStore {
	return NewBTreeCacheWrap(EmptyKVStore{})
}

// entry is a single write recorded by a cache. A deleted entry hides the
// key of the parent store.
type entry struct {
	key     []byte
	value   []byte
	deleted bool
}

var _ btree.Item = entry{}

func (e entry) Less(than btree.Item) bool {
	return bytes.Compare(e.key, than.(entry).key) < 0
}

// BTreeCacheWrap keeps all writes in a btree on top of a parent store. The
// parent is not modified until Write, which applies the final state of
// every written key with a single parent batch.
type BTreeCacheWrap struct {
	tree   *btree.BTree
	parent KVStore
}

var _ KVCacheWrap = (*BTreeCacheWrap)(nil)

// NewBTreeCacheWrap returns a cache over parent.
func NewBTreeCacheWrap(parent KVStore) *BTreeCacheWrap {
	return &BTreeCacheWrap{
		tree:   btree.New(degree),
		parent: parent,
	}
}

// CacheWrap layers another cache on top of this one.
func (c *BTreeCacheWrap) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(c)
}

// NewBatch returns a batch that writes into this cache.
func (c *BTreeCacheWrap) NewBatch() Batch {
	return NewNonAtomicBatch(c)
}

// Write flushes all cached writes to the parent and empties the cache.
// The cache can be used again afterwards.
func (c *BTreeCacheWrap) Write() error {
	batch := c.parent.NewBatch()
	var err error
	c.tree.Ascend(func(item btree.Item) bool {
		e := item.(entry)
		if e.deleted {
			err = batch.Delete(e.key)
		} else {
			err = batch.Set(e.key, e.value)
		}
		return err == nil
	})
	if err == nil {
		err = batch.Write()
	}
	c.Discard()
	return err
}

// Discard drops all cached writes.
func (c *BTreeCacheWrap) Discard() {
	c.tree.Clear(false)
}

func (c *BTreeCacheWrap) Set(key, value []byte) error {
	c.tree.ReplaceOrInsert(entry{key: key, value: value})
	return nil
}

func (c *BTreeCacheWrap) Delete(key []byte) error {
	c.tree.ReplaceOrInsert(entry{key: key, deleted: true})
	return nil
}

// lookup returns the cached entry for key, if any.
func (c *BTreeCacheWrap) lookup(key []byte) (entry, bool) {
	item := c.tree.Get(entry{key: key})
	if item == nil {
		return entry{}, false
	}
	return item.(entry), true
}

func (c *BTreeCacheWrap) Get(key []byte) ([]byte, error) {
	if e, ok := c.lookup(key); ok {
		if e.deleted {
			return nil, nil
		}
		return e.value, nil
	}
	return c.parent.Get(key)
}

func (c *BTreeCacheWrap) Has(key []byte) (bool, error) {
	if e, ok := c.lookup(key); ok {
		return !e.deleted, nil
	}
	return c.parent.Has(key)
}

// Iterator returns keys in [start, end) in ascending order. Cached writes
// shadow the parent store.
func (c *BTreeCacheWrap) Iterator(start, end []byte) (Iterator, error) {
	parent, err := c.parent.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	return newMergeIterator(c.entries(start, end, false), parent, false)
}

// ReverseIterator returns keys in [start, end) in descending order.
func (c *BTreeCacheWrap) ReverseIterator(start, end []byte) (Iterator, error) {
	parent, err := c.parent.ReverseIterator(start, end)
	if err != nil {
		return nil, err
	}
	return newMergeIterator(c.entries(start, end, true), parent, true)
}

// entries returns a copy of the cached entries within [start, end). A nil
// bound is open.
func (c *BTreeCacheWrap) entries(start, end []byte, descending bool) []entry {
	var res []entry
	collect := func(item btree.Item) bool {
		res = append(res, item.(entry))
		return true
	}
	switch {
	case start == nil && end == nil:
		c.tree.Ascend(collect)
	case start == nil:
		c.tree.AscendLessThan(entry{key: end}, collect)
	case end == nil:
		c.tree.AscendGreaterOrEqual(entry{key: start}, collect)
	default:
		c.tree.AscendRange(entry{key: start}, entry{key: end}, collect)
	}
	if descending {
		for i, j := 0, len(res)-1; i < j; i, j = i+1, j-1 {
			res[i], res[j] = res[j], res[i]
		}
	}
	return res
}
