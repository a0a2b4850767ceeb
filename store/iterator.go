package store

import (
	"bytes"

	"github.com/iov-one/barter/errors"
)

// mergeIterator combines the cached entries of a layer with the iterator
// of its parent. On equal keys the cached entry wins. Deleted entries are
// skipped together with the parent key they hide.
type mergeIterator struct {
	cached     []entry
	parent     Iterator
	descending bool
}

var _ Iterator = (*mergeIterator)(nil)

func newMergeIterator(cached []entry, parent Iterator, descending bool) (*mergeIterator, error) {
	it := &mergeIterator{cached: cached, parent: parent, descending: descending}
	if err := it.skipDeleted(); err != nil {
		it.Close()
		return nil, err
	}
	return it, nil
}

// source of the current position.
type source int

const (
	exhausted source = iota
	fromCache
	fromParent
	fromBoth
)

// current returns which of the two iterators holds the next key in the
// iteration order.
func (it *mergeIterator) current() source {
	cacheOK := len(it.cached) > 0
	parentOK := it.parent != nil && it.parent.Valid()
	switch {
	case !cacheOK && !parentOK:
		return exhausted
	case !parentOK:
		return fromCache
	case !cacheOK:
		return fromParent
	}

	cmp := bytes.Compare(it.cached[0].key, it.parent.Key())
	if it.descending {
		cmp = -cmp
	}
	switch {
	case cmp < 0:
		return fromCache
	case cmp > 0:
		return fromParent
	default:
		return fromBoth
	}
}

func (it *mergeIterator) Valid() bool {
	return it.current() != exhausted
}

func (it *mergeIterator) Next() error {
	if err := it.advance(it.current()); err != nil {
		return err
	}
	return it.skipDeleted()
}

func (it *mergeIterator) advance(src source) error {
	switch src {
	case fromCache:
		it.cached = it.cached[1:]
	case fromParent:
		return it.parent.Next()
	case fromBoth:
		it.cached = it.cached[1:]
		return it.parent.Next()
	default:
		return errors.Wrap(errors.ErrDatabase, "iterator exhausted")
	}
	return nil
}

func (it *mergeIterator) Key() []byte {
	switch it.current() {
	case fromCache, fromBoth:
		return it.cached[0].key
	case fromParent:
		return it.parent.Key()
	}
	panic("iterator exhausted")
}

func (it *mergeIterator) Value() []byte {
	switch it.current() {
	case fromCache, fromBoth:
		return it.cached[0].value
	case fromParent:
		return it.parent.Value()
	}
	panic("iterator exhausted")
}

func (it *mergeIterator) Close() {
	if it.parent != nil {
		it.parent.Close()
	}
	it.cached = nil
}

// skipDeleted moves past all deleted entries at the current position.
func (it *mergeIterator) skipDeleted() error {
	for {
		src := it.current()
		if src != fromCache && src != fromBoth {
			return nil
		}
		if !it.cached[0].deleted {
			return nil
		}
		if err := it.advance(src); err != nil {
			return err
		}
	}
}
