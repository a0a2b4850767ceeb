package escrow

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/gconf"
)

const configurationKey = "escrow"

// Configuration is the deployment configuration of the escrow extension.
type Configuration struct {
	Metadata *barter.Metadata `json:"metadata"`
	// ProgramID is the program identity seeded into every derivation.
	// Changing it affects only escrows initiated afterwards.
	ProgramID barter.Address `json:"program_id"`
	// Owner can update the configuration.
	Owner barter.Address `json:"owner"`
}

var _ gconf.OwnedConfig = (*Configuration)(nil)

// Validate ensures the configuration is valid
func (c *Configuration) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", c.Metadata.Validate())
	errs = errors.AppendField(errs, "ProgramID", c.ProgramID.Validate())
	errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
	return errs
}

// GetOwner returns the address that can update the configuration.
func (c *Configuration) GetOwner() barter.Address {
	return c.Owner
}

// Marshal serializes the configuration with the escrow codec.
func (c *Configuration) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(c)
}

// Unmarshal loads the configuration serialized with the escrow codec.
func (c *Configuration) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, c)
}

func loadConf(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, configurationKey, &conf); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return &conf, nil
}
