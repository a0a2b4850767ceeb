package utils

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
)

// Recovery converts a panic raised further down the chain into an
// ErrPanic. The panic value is logged, the returned error is redacted
// by the application before it reaches a client.
type Recovery struct{}

var _ barter.Decorator = Recovery{}

func NewRecovery() Recovery {
	return Recovery{}
}

func (Recovery) Check(ctx barter.Context, db barter.KVStore, tx barter.Tx, next barter.Checker) (_ *barter.CheckResult, err error) {
	defer recovered(ctx, &err)
	return next.Check(ctx, db, tx)
}

func (Recovery) Deliver(ctx barter.Context, db barter.KVStore, tx barter.Tx, next barter.Deliverer) (_ *barter.DeliverResult, err error) {
	defer recovered(ctx, &err)
	return next.Deliver(ctx, db, tx)
}

// recovered must be deferred directly, recover only works one frame deep.
func recovered(ctx barter.Context, err *error) {
	if r := recover(); r != nil {
		*err = errors.Wrapf(errors.ErrPanic, "%v", r)
		barter.GetLogger(ctx).Error("recovered from panic", "panic", r)
	}
}
