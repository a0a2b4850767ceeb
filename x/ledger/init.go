package ledger

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
)

// Initializer fulfils the Initializer interface to load data from the
// genesis file
type Initializer struct{}

var _ barter.Initializer = (*Initializer)(nil)

type genesisClass struct {
	ID     barter.Address `json:"id"`
	Name   string         `json:"name"`
	Supply uint64         `json:"supply"`
}

type genesisAccount struct {
	Address   barter.Address `json:"address"`
	Class     barter.Address `json:"class"`
	Authority barter.Address `json:"authority"`
	Amount    uint64         `json:"amount"`
}

// FromGenesis will parse asset classes and accounts from genesis and save
// them to the database. Account amounts are minted within the class supply.
func (*Initializer) FromGenesis(opts barter.Options, db barter.KVStore) error {
	var state struct {
		Classes  []genesisClass   `json:"classes"`
		Accounts []genesisAccount `json:"accounts"`
	}
	if err := opts.ReadOptions("ledger", &state); err != nil {
		return err
	}

	ctrl := NewController()
	for i, c := range state.Classes {
		class := &AssetClass{
			Metadata: &barter.Metadata{Schema: 1},
			Name:     c.Name,
			Supply:   c.Supply,
		}
		if err := ctrl.CreateClass(db, c.ID, class); err != nil {
			return errors.Wrapf(err, "class #%d", i)
		}
	}
	for i, a := range state.Accounts {
		if _, err := ctrl.CreateAccount(db, nil, a.Address, a.Class, a.Authority); err != nil {
			return errors.Wrapf(err, "account #%d", i)
		}
		if a.Amount == 0 {
			continue
		}
		if err := ctrl.mint(db, a.Address, a.Amount); err != nil {
			return errors.Wrapf(err, "account #%d", i)
		}
	}
	return nil
}
