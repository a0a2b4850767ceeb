package ledger

import (
	"math"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/orm"
	"github.com/iov-one/barter/x"
)

// Controller is the ledger interface other extensions depend on.
type Controller interface {
	Reader

	// CreateClass registers a new asset class under given id.
	CreateClass(db barter.KVStore, id barter.Address, class *AssetClass) error

	// CreateAccount creates an empty account of given class. The account
	// is controlled by the authority. ErrDuplicate is returned if the
	// address is already in use.
	CreateAccount(db barter.KVStore, payer, address, class, authority barter.Address) (*Account, error)

	// Transfer moves amount units from src to dst. The authority of the
	// source account must be satisfied by auth.
	Transfer(ctx barter.Context, db barter.KVStore, auth x.Authenticator, src, dst barter.Address, amount uint64) error
}

// Reader gives read only access to the ledger state.
type Reader interface {
	Class(db barter.ReadOnlyKVStore, id barter.Address) (*AssetClass, error)
	Account(db barter.ReadOnlyKVStore, address barter.Address) (*Account, error)
	Balance(db barter.ReadOnlyKVStore, address barter.Address) (uint64, error)
	Exists(db barter.ReadOnlyKVStore, address barter.Address) (bool, error)
}

// BaseController is the default ledger implementation, storing classes and
// accounts in orm buckets.
type BaseController struct {
	classes  orm.ModelBucket
	accounts orm.ModelBucket
}

var _ Controller = BaseController{}

// NewController returns a controller operating on the ledger buckets.
func NewController() BaseController {
	return BaseController{
		classes:  NewClassBucket(),
		accounts: NewAccountBucket(),
	}
}

// CreateClass registers a new asset class. Class ids must be unique among
// classes and accounts.
func (c BaseController) CreateClass(db barter.KVStore, id barter.Address, class *AssetClass) error {
	if err := id.Validate(); err != nil {
		return errors.Wrap(err, "class id")
	}
	exists, err := c.Exists(db, id)
	if err != nil {
		return err
	}
	if exists {
		return errors.Wrapf(errors.ErrDuplicate, "class %s", id)
	}
	if err := c.classes.Put(db, id, class); err != nil {
		return errors.Wrap(err, "save class")
	}
	return nil
}

// Class returns the class with given id or ErrNotFound.
func (c BaseController) Class(db barter.ReadOnlyKVStore, id barter.Address) (*AssetClass, error) {
	var class AssetClass
	if err := c.classes.One(db, id, &class); err != nil {
		return nil, errors.Wrapf(err, "class %s", id)
	}
	return &class, nil
}

// CreateAccount creates an empty account of given class.
func (c BaseController) CreateAccount(db barter.KVStore, payer, address, class, authority barter.Address) (*Account, error) {
	if err := address.Validate(); err != nil {
		return nil, errors.Wrap(err, "address")
	}
	exists, err := c.Exists(db, address)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.Wrapf(errors.ErrDuplicate, "account %s", address)
	}
	if _, err := c.Class(db, class); err != nil {
		return nil, err
	}
	acc := &Account{
		Metadata:  &barter.Metadata{Schema: 1},
		Class:     class,
		Authority: authority,
		Payer:     payer,
	}
	if err := c.accounts.Put(db, address, acc); err != nil {
		return nil, errors.Wrap(err, "save account")
	}
	return acc, nil
}

// Account returns the account stored under given address or ErrNotFound.
func (c BaseController) Account(db barter.ReadOnlyKVStore, address barter.Address) (*Account, error) {
	var acc Account
	if err := c.accounts.One(db, address, &acc); err != nil {
		return nil, errors.Wrapf(err, "account %s", address)
	}
	return &acc, nil
}

// Balance returns the number of units held by the account.
func (c BaseController) Balance(db barter.ReadOnlyKVStore, address barter.Address) (uint64, error) {
	acc, err := c.Account(db, address)
	if err != nil {
		return 0, err
	}
	return acc.Amount, nil
}

// Exists returns true if the address is used by an account or a class.
func (c BaseController) Exists(db barter.ReadOnlyKVStore, address barter.Address) (bool, error) {
	if len(address) == 0 {
		return false, nil
	}
	for _, b := range []orm.ModelBucket{c.accounts, c.classes} {
		switch err := b.Has(db, address); {
		case err == nil:
			return true, nil
		case !errors.ErrNotFound.Is(err):
			return false, err
		}
	}
	return false, nil
}

// AccountsByAuthority returns all accounts controlled by given authority
// together with their addresses.
func (c BaseController) AccountsByAuthority(db barter.ReadOnlyKVStore, authority barter.Address) ([]barter.Address, []*Account, error) {
	var accounts []*Account
	keys, err := c.accounts.ByIndex(db, "authority", authority, &accounts)
	if err != nil {
		return nil, nil, err
	}
	addrs := make([]barter.Address, len(keys))
	for i, k := range keys {
		addrs[i] = barter.Address(k)
	}
	return addrs, accounts, nil
}

// Transfer moves units between two accounts of the same class. The whole
// transfer is validated before any state is written.
func (c BaseController) Transfer(ctx barter.Context, db barter.KVStore, auth x.Authenticator, src, dst barter.Address, amount uint64) error {
	if amount == 0 {
		return errors.Wrap(errors.ErrAmount, "transfer amount must be positive")
	}
	if src.Equals(dst) {
		return errors.Wrap(errors.ErrInput, "source and destination must differ")
	}
	from, err := c.Account(db, src)
	if err != nil {
		return errors.Wrap(err, "source")
	}
	if !auth.HasAddress(ctx, from.Authority) {
		return errors.Wrapf(errors.ErrUnauthorized, "source %s authority", src)
	}
	if from.Amount < amount {
		return errors.Wrapf(ErrInsufficientBalance, "source %s holds %d, need %d", src, from.Amount, amount)
	}
	to, err := c.Account(db, dst)
	if err != nil {
		return errors.Wrap(err, "destination")
	}
	if !to.Class.Equals(from.Class) {
		return errors.Wrapf(errors.ErrType, "destination holds class %s, not %s", to.Class, from.Class)
	}
	if to.Amount > math.MaxUint64-amount {
		return errors.Wrap(errors.ErrOverflow, "destination amount")
	}

	from.Amount -= amount
	to.Amount += amount
	if err := c.accounts.Put(db, src, from); err != nil {
		return errors.Wrap(err, "save source")
	}
	if err := c.accounts.Put(db, dst, to); err != nil {
		return errors.Wrap(err, "save destination")
	}

	barter.GetLogger(ctx).Debug("ledger transfer",
		"src", src, "dst", dst, "class", from.Class, "amount", amount)
	return nil
}

// mint credits units of a class to an account. It is used only to seed the
// state from genesis and enforces the class supply.
func (c BaseController) mint(db barter.KVStore, address barter.Address, amount uint64) error {
	acc, err := c.Account(db, address)
	if err != nil {
		return err
	}
	class, err := c.Class(db, acc.Class)
	if err != nil {
		return err
	}
	minted, err := c.minted(db, acc.Class)
	if err != nil {
		return err
	}
	if minted > class.Supply || class.Supply-minted < amount {
		return errors.Wrapf(ErrSupply, "class %s supply %d, minted %d, requested %d", acc.Class, class.Supply, minted, amount)
	}
	acc.Amount += amount
	return c.accounts.Put(db, address, acc)
}

// minted returns the sum of units held by all accounts of a class.
func (c BaseController) minted(db barter.ReadOnlyKVStore, class barter.Address) (uint64, error) {
	var accounts []*Account
	if _, err := c.accounts.ByIndex(db, "class", class, &accounts); err != nil {
		return 0, err
	}
	var total uint64
	for _, a := range accounts {
		total += a.Amount
	}
	return total, nil
}
