package escrow

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/x"
	"github.com/iov-one/barter/x/ledger"
	"github.com/iov-one/barter/x/utils"
)

// Executor moves assets in and out of custody accounts. It never
// validates escrow terms, callers must run the validator first.
type Executor struct {
	ledger ledger.Controller
}

// NewExecutor returns an executor using given ledger.
func NewExecutor(l ledger.Controller) Executor {
	return Executor{ledger: l}
}

// Deposit moves one unit from the source into custody. The depositor
// authorizes the transfer.
func (ex Executor) Deposit(ctx barter.Context, db barter.KVStore, depositor x.Authenticator, source, custody barter.Address) error {
	if err := ex.ledger.Transfer(ctx, db, depositor, source, custody, 1); err != nil {
		return errors.Wrap(err, "deposit")
	}
	return nil
}

// Withdraw moves one unit out of custody. The escrow authority authorizes
// the transfer.
func (ex Executor) Withdraw(ctx barter.Context, db barter.KVStore, auth Authority, custody, destination barter.Address) error {
	if err := ex.ledger.Transfer(ctx, db, auth, custody, destination, 1); err != nil {
		return errors.Wrap(err, "withdraw")
	}
	return nil
}

// Release is a single custody to destination movement of a settlement.
type Release struct {
	Custody     barter.Address
	Destination barter.Address
}

// Settle executes all releases or none of them. Releases are applied to a
// cache wrap of the store that is written only when all of them succeed.
func (ex Executor) Settle(ctx barter.Context, db barter.KVStore, auth Authority, releases ...Release) error {
	return atomic(db, func(db barter.KVStore) error {
		for i, r := range releases {
			if err := ex.Withdraw(ctx, db, auth, r.Custody, r.Destination); err != nil {
				return errors.Wrapf(err, "release #%d", i)
			}
		}
		return nil
	})
}

// atomic runs fn on a cache of db that is written only when fn succeeds.
// Unlike utils.Atomic it refuses stores that cannot be cached, so escrow
// writes never depend on a Savepoint decorator being installed.
func atomic(db barter.KVStore, fn func(barter.KVStore) error) error {
	if _, ok := db.(barter.CacheableKVStore); !ok {
		return errors.Wrapf(errors.ErrHuman, "atomic update requires a cacheable store, got %T", db)
	}
	return utils.Atomic(db, fn)
}
