package utils

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
)

// Savepoint runs the rest of the chain on a cache of the store. The cache
// is written back only if the call succeeds, so a failing handler leaves
// no partial state behind. Each phase has to be enabled explicitly.
type Savepoint struct {
	check, deliver bool
}

var _ barter.Decorator = Savepoint{}

// NewSavepoint returns a savepoint that is disabled for both phases.
func NewSavepoint() Savepoint {
	return Savepoint{}
}

// OnCheck enables the savepoint for Check.
func (s Savepoint) OnCheck() Savepoint {
	s.check = true
	return s
}

// OnDeliver enables the savepoint for Deliver.
func (s Savepoint) OnDeliver() Savepoint {
	s.deliver = true
	return s
}

func (s Savepoint) Check(ctx barter.Context, db barter.KVStore, tx barter.Tx, next barter.Checker) (res *barter.CheckResult, err error) {
	if !s.check {
		return next.Check(ctx, db, tx)
	}
	err = Atomic(db, func(db barter.KVStore) error {
		res, err = next.Check(ctx, db, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s Savepoint) Deliver(ctx barter.Context, db barter.KVStore, tx barter.Tx, next barter.Deliverer) (res *barter.DeliverResult, err error) {
	if !s.deliver {
		return next.Deliver(ctx, db, tx)
	}
	err = Atomic(db, func(db barter.KVStore) error {
		res, err = next.Deliver(ctx, db, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Atomic calls fn with a cache of db and writes the cache back only when fn
// returns nil. A store that cannot be cached is handed to fn directly.
func Atomic(db barter.KVStore, fn func(barter.KVStore) error) error {
	cacheable, ok := db.(barter.CacheableKVStore)
	if !ok {
		return fn(db)
	}
	cache := cacheable.CacheWrap()
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	return errors.Wrap(cache.Write(), "write savepoint")
}
