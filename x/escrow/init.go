package escrow

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/gconf"
)

// Initializer fulfils the Initializer interface to load data from the
// genesis file
type Initializer struct{}

var _ barter.Initializer = (*Initializer)(nil)

// FromGenesis stores the escrow configuration found under the "conf"
// section of the genesis.
func (*Initializer) FromGenesis(opts barter.Options, db barter.KVStore) error {
	var conf Configuration
	return gconf.InitConfig(db, opts, configurationKey, &conf)
}
