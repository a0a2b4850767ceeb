package orm

import (
	"bytes"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
)

// Indexer computes the index key of an object. A nil key leaves the object
// out of the index.
type Indexer func(Object) ([]byte, error)

// MultiKeyIndexer computes all index keys of an object.
type MultiKeyIndexer func(Object) ([][]byte, error)

func (fn Indexer) multi() MultiKeyIndexer {
	return func(obj Object) ([][]byte, error) {
		key, err := fn(obj)
		if err != nil || key == nil {
			return nil, err
		}
		return [][]byte{key}, nil
	}
}

// index keeps, for every key, the set of primary keys indexed under it.
// A unique index refuses a second primary key for the same key.
type index struct {
	name    string
	prefix  []byte
	unique  bool
	indexer MultiKeyIndexer
}

func newIndex(name string, indexer MultiKeyIndexer, unique bool) *index {
	return &index{
		name:    name,
		prefix:  []byte("_i." + name + ":"),
		unique:  unique,
		indexer: indexer,
	}
}

func (ix *index) dbKey(key []byte) []byte {
	out := make([]byte, 0, len(ix.prefix)+len(key))
	return append(append(out, ix.prefix...), key...)
}

// keysOf returns the distinct keys of obj. A nil object has none.
func (ix *index) keysOf(obj Object) ([][]byte, error) {
	if obj == nil {
		return nil, nil
	}
	keys, err := ix.indexer(obj)
	if err != nil {
		return nil, errors.Wrapf(err, "index %s", ix.name)
	}
	distinct := keys[:0:0]
	for _, k := range keys {
		if !containsKey(distinct, k) {
			distinct = append(distinct, k)
		}
	}
	return distinct, nil
}

// update moves pk from the keys of prev to the keys of next. prev is nil
// for an insert and next is nil for a delete. Keys present in both are not
// touched.
func (ix *index) update(db barter.KVStore, pk []byte, prev, next Object) error {
	before, err := ix.keysOf(prev)
	if err != nil {
		return err
	}
	after, err := ix.keysOf(next)
	if err != nil {
		return err
	}
	for _, k := range before {
		if containsKey(after, k) {
			continue
		}
		if err := ix.unlink(db, k, pk); err != nil {
			return err
		}
	}
	for _, k := range after {
		if containsKey(before, k) {
			continue
		}
		if err := ix.link(db, k, pk); err != nil {
			return err
		}
	}
	return nil
}

func (ix *index) link(db barter.KVStore, key, pk []byte) error {
	refs, err := ix.refs(db, key)
	if err != nil {
		return err
	}
	if ix.unique && len(refs.Refs) != 0 {
		return errors.Wrapf(errors.ErrDuplicate, "index %s", ix.name)
	}
	if err := refs.Add(pk); err != nil {
		return errors.Wrapf(err, "index %s", ix.name)
	}
	return ix.save(db, key, refs)
}

func (ix *index) unlink(db barter.KVStore, key, pk []byte) error {
	refs, err := ix.refs(db, key)
	if err != nil {
		return err
	}
	if err := refs.Remove(pk); err != nil {
		return errors.Wrapf(err, "index %s", ix.name)
	}
	return ix.save(db, key, refs)
}

// refs loads the primary keys stored under key. A missing entry is an
// empty set.
func (ix *index) refs(db barter.ReadOnlyKVStore, key []byte) (*MultiRef, error) {
	raw, err := db.Get(ix.dbKey(key))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "index %s: %s", ix.name, err)
	}
	var refs MultiRef
	if raw == nil {
		return &refs, nil
	}
	if err := refs.Unmarshal(raw); err != nil {
		return nil, errors.Wrapf(errors.ErrModel, "cannot parse %s index: %s", ix.name, err)
	}
	return &refs, nil
}

// save writes refs under key, or deletes the entry once it is empty.
func (ix *index) save(db barter.KVStore, key []byte, refs *MultiRef) error {
	if len(refs.Refs) == 0 {
		return db.Delete(ix.dbKey(key))
	}
	raw, err := refs.Marshal()
	if err != nil {
		return errors.Wrapf(errors.ErrModel, "cannot serialize %s index: %s", ix.name, err)
	}
	return db.Set(ix.dbKey(key), raw)
}

func containsKey(keys [][]byte, key []byte) bool {
	for _, k := range keys {
		if bytes.Equal(k, key) {
			return true
		}
	}
	return false
}
