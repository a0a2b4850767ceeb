package store

import (
	"github.com/iov-one/barter/errors"
)

// Model is a single key value pair.
type Model struct {
	Key   []byte
	Value []byte
}

// Pair builds a Model.
func Pair(key, value []byte) Model {
	return Model{Key: key, Value: value}
}

// SliceIterator iterates over a preloaded list of pairs. The pairs must
// already be in the iteration order.
type SliceIterator struct {
	pairs []Model
}

var _ Iterator = (*SliceIterator)(nil)

// NewSliceIterator returns an iterator over given pairs.
func NewSliceIterator(pairs []Model) *SliceIterator {
	return &SliceIterator{pairs: pairs}
}

func (s *SliceIterator) Valid() bool {
	return len(s.pairs) > 0
}

func (s *SliceIterator) Next() error {
	if len(s.pairs) == 0 {
		return errors.Wrap(errors.ErrDatabase, "iterator exhausted")
	}
	s.pairs = s.pairs[1:]
	return nil
}

func (s *SliceIterator) Key() []byte {
	return s.pairs[0].Key
}

func (s *SliceIterator) Value() []byte {
	return s.pairs[0].Value
}

func (s *SliceIterator) Close() {
	s.pairs = nil
}

// EmptyKVStore holds no data and ignores all writes. It is the bottom layer
// of the in memory store.
type EmptyKVStore struct{}

var _ KVStore = EmptyKVStore{}

func (EmptyKVStore) Get([]byte) ([]byte, error) { return nil, nil }
func (EmptyKVStore) Has([]byte) (bool, error)   { return false, nil }
func (EmptyKVStore) Set([]byte, []byte) error   { return nil }
func (EmptyKVStore) Delete([]byte) error        { return nil }

func (EmptyKVStore) Iterator([]byte, []byte) (Iterator, error) {
	return NewSliceIterator(nil), nil
}

func (EmptyKVStore) ReverseIterator([]byte, []byte) (Iterator, error) {
	return NewSliceIterator(nil), nil
}

func (e EmptyKVStore) NewBatch() Batch {
	return NewNonAtomicBatch(e)
}

// Op is a recorded write, either a set or a delete.
type Op struct {
	key   []byte
	value []byte
	del   bool
}

// SetOp records setting key to value.
func SetOp(key, value []byte) Op {
	return Op{key: key, value: value}
}

// DelOp records deleting key.
func DelOp(key []byte) Op {
	return Op{key: key, del: true}
}

// Apply executes the operation on given store.
func (o Op) Apply(out SetDeleter) error {
	if o.del {
		return out.Delete(o.key)
	}
	return out.Set(o.key, o.value)
}

// NonAtomicBatch collects operations and applies them one by one on Write.
// A failing operation leaves the earlier ones applied, so it must only be
// used on top of stores that are themselves cache wraps or in memory.
type NonAtomicBatch struct {
	out SetDeleter
	ops []Op
}

var _ Batch = (*NonAtomicBatch)(nil)

// NewNonAtomicBatch returns an empty batch writing to out.
func NewNonAtomicBatch(out SetDeleter) *NonAtomicBatch {
	return &NonAtomicBatch{out: out}
}

func (b *NonAtomicBatch) Set(key, value []byte) error {
	b.ops = append(b.ops, SetOp(key, value))
	return nil
}

func (b *NonAtomicBatch) Delete(key []byte) error {
	b.ops = append(b.ops, DelOp(key))
	return nil
}

// Write applies all collected operations and empties the batch.
func (b *NonAtomicBatch) Write() error {
	ops := b.ops
	b.ops = nil
	for i, op := range ops {
		if err := op.Apply(b.out); err != nil {
			return errors.Wrapf(err, "operation #%d", i)
		}
	}
	return nil
}
