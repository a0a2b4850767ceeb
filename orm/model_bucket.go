package orm

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

// ModelBucket stores models of a single type under their primary key.
type ModelBucket interface {
	// One loads the model stored under key into dest. It returns
	// ErrNotFound if there is none and ErrType if dest is not of the
	// bucket model type.
	One(db barter.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns nil if a model is stored under key and ErrNotFound
	// otherwise.
	Has(db barter.ReadOnlyKVStore, key []byte) error

	// ByIndex appends to dest all models indexed under key by the named
	// index and returns their primary keys, in key order. dest must be a
	// pointer to a slice of the model type, or of pointers to it.
	ByIndex(db barter.ReadOnlyKVStore, indexName string, key []byte, dest interface{}) (keys [][]byte, err error)

	// Put validates m and stores it under key, updating all indexes.
	Put(db barter.KVStore, key []byte, m Model) error

	// Delete removes the model stored under key. It returns ErrNotFound if
	// there is none.
	Delete(db barter.KVStore, key []byte) error
}

// ModelBucketOption configures a bucket in NewModelBucket.
type ModelBucketOption func(*modelBucket)

// WithIndex adds an index where every model has at most one key.
func WithIndex(name string, indexer Indexer, unique bool) ModelBucketOption {
	return WithMultiKeyIndex(name, indexer.multi(), unique)
}

// WithMultiKeyIndex adds an index where a model can be found under many
// keys. A key repeated by the indexer is stored once.
func WithMultiKeyIndex(name string, indexer MultiKeyIndexer, unique bool) ModelBucketOption {
	return func(mb *modelBucket) {
		if mb.index(name) != nil {
			panic(fmt.Sprintf("index %s registered twice", name))
		}
		ix := newIndex(mb.name+"_"+name, indexer, unique)
		mb.indexes = append(mb.indexes, namedIndex{name: name, index: ix})
	}
}

// NewModelBucket returns a bucket for models of the same type as proto.
// It panics when the name is not 3 to 10 lower case letters or underscores.
func NewModelBucket(name string, proto Model, opts ...ModelBucketOption) ModelBucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("illegal bucket name: %q", name))
	}
	mb := &modelBucket{
		name:   name,
		prefix: []byte(name + ":"),
		model:  reflect.TypeOf(proto),
	}
	for _, opt := range opts {
		opt(mb)
	}
	return mb
}

type namedIndex struct {
	name  string
	index *index
}

type modelBucket struct {
	name    string
	prefix  []byte
	model   reflect.Type
	indexes []namedIndex
}

var _ ModelBucket = (*modelBucket)(nil)

func (mb *modelBucket) index(name string) *index {
	for _, ni := range mb.indexes {
		if ni.name == name {
			return ni.index
		}
	}
	return nil
}

func (mb *modelBucket) dbKey(key []byte) []byte {
	out := make([]byte, 0, len(mb.prefix)+len(key))
	return append(append(out, mb.prefix...), key...)
}

// load returns the model stored under key or nil.
func (mb *modelBucket) load(db barter.ReadOnlyKVStore, key []byte) (Model, error) {
	raw, err := db.Get(mb.dbKey(key))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "%s: %s", mb.name, err)
	}
	if raw == nil {
		return nil, nil
	}
	m := reflect.New(mb.model.Elem()).Interface().(Model)
	if err := m.Unmarshal(raw); err != nil {
		return nil, errors.Wrapf(errors.ErrModel, "cannot unmarshal %s: %s", mb.name, err)
	}
	return m, nil
}

func (mb *modelBucket) One(db barter.ReadOnlyKVStore, key []byte, dest Model) error {
	if reflect.TypeOf(dest) != mb.model {
		return errors.Wrapf(errors.ErrType, "%s holds %s, not %T", mb.name, mb.model, dest)
	}
	m, err := mb.load(db, key)
	if err != nil {
		return err
	}
	if m == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", dest)
	}
	reflect.ValueOf(dest).Elem().Set(reflect.ValueOf(m).Elem())
	return nil
}

func (mb *modelBucket) Has(db barter.ReadOnlyKVStore, key []byte) error {
	if key == nil {
		return errors.Wrap(errors.ErrInput, "nil key")
	}
	ok, err := db.Has(mb.dbKey(key))
	if err != nil {
		return errors.Wrapf(errors.ErrDatabase, "%s: %s", mb.name, err)
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "%s not in the store", mb.name)
	}
	return nil
}

func (mb *modelBucket) ByIndex(db barter.ReadOnlyKVStore, indexName string, key []byte, dest interface{}) ([][]byte, error) {
	slice, byPointer, err := mb.destination(dest)
	if err != nil {
		return nil, err
	}
	ix := mb.index(indexName)
	if ix == nil {
		return nil, errors.Wrap(ErrInvalidIndex, indexName)
	}
	refs, err := ix.refs(db, key)
	if err != nil {
		return nil, err
	}
	if len(refs.Refs) == 0 {
		return nil, nil
	}
	for _, pk := range refs.Refs {
		m, err := mb.load(db, pk)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, errors.Wrapf(errors.ErrDatabase, "index %s points to a missing %s", indexName, mb.name)
		}
		val := reflect.ValueOf(m)
		if !byPointer {
			val = val.Elem()
		}
		slice.Set(reflect.Append(slice, val))
	}
	return refs.Refs, nil
}

// destination checks that dest is a pointer to []M or []*M, where *M is
// the bucket model, and returns the slice.
func (mb *modelBucket) destination(dest interface{}) (reflect.Value, bool, error) {
	ptr := reflect.ValueOf(dest)
	if ptr.Kind() != reflect.Ptr || ptr.Elem().Kind() != reflect.Slice {
		return reflect.Value{}, false, errors.Wrapf(errors.ErrType, "destination must be a pointer to a slice, got %T", dest)
	}
	if ptr.IsNil() {
		return reflect.Value{}, false, errors.Wrap(errors.ErrImmutable, "got nil pointer")
	}
	slice := ptr.Elem()
	elem := slice.Type().Elem()
	switch {
	case elem == mb.model:
		return slice, true, nil
	case elem == mb.model.Elem():
		return slice, false, nil
	}
	return reflect.Value{}, false, errors.Wrapf(errors.ErrType, "%s holds %s, cannot return %s", mb.name, mb.model, elem)
}

func (mb *modelBucket) Put(db barter.KVStore, key []byte, m Model) error {
	if reflect.TypeOf(m) != mb.model {
		return errors.Wrapf(errors.ErrType, "cannot store %T in %s", m, mb.name)
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	raw, err := m.Marshal()
	if err != nil {
		return errors.Wrapf(errors.ErrModel, "cannot marshal %s: %s", mb.name, err)
	}
	if err := mb.reindex(db, key, m); err != nil {
		return err
	}
	if err := db.Set(mb.dbKey(key), raw); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "%s: %s", mb.name, err)
	}
	return nil
}

func (mb *modelBucket) Delete(db barter.KVStore, key []byte) error {
	if err := mb.Has(db, key); err != nil {
		return err
	}
	if err := mb.reindex(db, key, nil); err != nil {
		return err
	}
	if err := db.Delete(mb.dbKey(key)); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "%s: %s", mb.name, err)
	}
	return nil
}

// reindex replaces the index entries of the model stored under key with
// those of next. A nil next removes them.
func (mb *modelBucket) reindex(db barter.KVStore, key []byte, next Model) error {
	if len(mb.indexes) == 0 {
		return nil
	}
	prev, err := mb.load(db, key)
	if err != nil {
		return err
	}
	var before, after Object
	if prev != nil {
		before = object{key: key, value: prev}
	}
	if next != nil {
		after = object{key: key, value: next}
	}
	for _, ni := range mb.indexes {
		if err := ni.index.update(db, key, before, after); err != nil {
			return err
		}
	}
	return nil
}
