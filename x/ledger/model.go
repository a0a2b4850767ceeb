package ledger

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/orm"
)

const maxClassNameLength = 64

// AssetClass describes a mint. All units of the class are spread over
// accounts and their sum never exceeds the supply.
type AssetClass struct {
	Metadata *barter.Metadata `json:"metadata"`
	Name     string           `json:"name"`
	Supply   uint64           `json:"supply"`
}

var _ orm.Model = (*AssetClass)(nil)

// Validate ensures the class is valid
func (c *AssetClass) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", c.Metadata.Validate())
	if len(c.Name) > maxClassNameLength {
		errs = errors.AppendField(errs, "Name", errors.ErrInput)
	}
	if c.Supply == 0 {
		errs = errors.AppendField(errs, "Supply", errors.ErrAmount)
	}
	return errs
}

// IsUnique returns true if the class represents a single unique asset.
func (c *AssetClass) IsUnique() bool {
	return c.Supply == 1
}

// Copy returns a deep copy of the class.
func (c *AssetClass) Copy() orm.Model {
	return &AssetClass{
		Metadata: c.Metadata.Copy(),
		Name:     c.Name,
		Supply:   c.Supply,
	}
}

// Marshal serializes the class with the ledger codec.
func (c *AssetClass) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(c)
}

// Unmarshal loads the class serialized with the ledger codec.
func (c *AssetClass) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, c)
}

// Account holds units of a single class. It is stored under its address.
type Account struct {
	Metadata *barter.Metadata `json:"metadata"`
	// Class is the id of the asset class this account holds.
	Class barter.Address `json:"class"`
	// Authority must authorize every transfer out of this account.
	Authority barter.Address `json:"authority"`
	Amount    uint64         `json:"amount"`
	// Payer is the party that requested the account creation.
	Payer barter.Address `json:"payer"`
}

var _ orm.Model = (*Account)(nil)

// Validate ensures the account is valid
func (a *Account) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", a.Metadata.Validate())
	errs = errors.AppendField(errs, "Class", a.Class.Validate())
	errs = errors.AppendField(errs, "Authority", a.Authority.Validate())
	if a.Payer != nil {
		errs = errors.AppendField(errs, "Payer", a.Payer.Validate())
	}
	return errs
}

// Copy returns a deep copy of the account.
func (a *Account) Copy() orm.Model {
	return &Account{
		Metadata:  a.Metadata.Copy(),
		Class:     a.Class.Clone(),
		Authority: a.Authority.Clone(),
		Amount:    a.Amount,
		Payer:     a.Payer.Clone(),
	}
}

// Marshal serializes the account with the ledger codec.
func (a *Account) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(a)
}

// Unmarshal loads the account serialized with the ledger codec.
func (a *Account) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, a)
}

// NewClassBucket returns a bucket storing asset classes by their id.
func NewClassBucket() orm.ModelBucket {
	return orm.NewModelBucket("class", &AssetClass{})
}

// NewAccountBucket returns a bucket storing accounts by their address. The
// bucket is indexed by authority and by class.
func NewAccountBucket() orm.ModelBucket {
	return orm.NewModelBucket("account", &Account{},
		orm.WithIndex("authority", accountAuthority, false),
		orm.WithIndex("class", accountClass, false),
	)
}

func toAccount(obj orm.Object) (*Account, error) {
	if obj == nil {
		return nil, errors.Wrap(errors.ErrHuman, "cannot take index of nil")
	}
	acc, ok := obj.Value().(*Account)
	if !ok {
		return nil, errors.Wrapf(errors.ErrHuman, "can only take index of Account, got %T", obj.Value())
	}
	return acc, nil
}

func accountAuthority(obj orm.Object) ([]byte, error) {
	acc, err := toAccount(obj)
	if err != nil {
		return nil, err
	}
	return acc.Authority, nil
}

func accountClass(obj orm.Object) ([]byte, error) {
	acc, err := toAccount(obj)
	if err != nil {
		return nil, err
	}
	return acc.Class, nil
}

// AccountAddress returns the deterministic address of an account of given
// class controlled by given authority. The seed allows one authority to own
// many accounts of the same class.
func AccountAddress(class, authority barter.Address, seed []byte) barter.Address {
	data := make([]byte, 0, len(class)+len(authority)+len(seed))
	data = append(data, class...)
	data = append(data, authority...)
	data = append(data, seed...)
	return barter.NewCondition("ledger", "account", data).Address()
}
