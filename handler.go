package barter

import (
	"encoding/json"

	"github.com/iov-one/barter/errors"
	"github.com/tendermint/tendermint/libs/common"
)

// Checker verifies a transaction against the current state without
// leaving any trace. Writes made by Check are always discarded.
type Checker interface {
	Check(ctx Context, db KVStore, tx Tx) (*CheckResult, error)
}

// Deliverer executes a transaction. On error all its writes are dropped.
type Deliverer interface {
	Deliver(ctx Context, db KVStore, tx Tx) (*DeliverResult, error)
}

// Handler processes the messages routed to it, for example funding a swap.
type Handler interface {
	Checker
	Deliverer
}

// Decorator wraps the next handler in the chain with a cross cutting
// concern such as logging, panic recovery or atomicity.
type Decorator interface {
	Check(ctx Context, db KVStore, tx Tx, next Checker) (*CheckResult, error)
	Deliver(ctx Context, db KVStore, tx Tx, next Deliverer) (*DeliverResult, error)
}

// Registry binds message paths to handlers.
type Registry interface {
	Handle(path string, h Handler)
}

// CheckResult is returned by a successful Check.
type CheckResult struct {
	// Data is machine readable, for example the id of a new escrow.
	Data []byte
	Log  string
	// GasAllocated bounds the work Deliver may perform.
	GasAllocated int64
}

// NewCheck returns a result with only gas and log set, which is all most
// handlers report.
func NewCheck(gasAllocated int64, log string) *CheckResult {
	return &CheckResult{GasAllocated: gasAllocated, Log: log}
}

// DeliverResult is returned by a successful Deliver.
type DeliverResult struct {
	Data []byte
	Log  string
	// Tags index the transaction by its side effects.
	Tags []common.KVPair
}

// Options is the app_state section of the genesis file. Every extension
// reads the key it owns.
type Options map[string]json.RawMessage

// ReadOptions decodes the JSON stored under key into obj. A missing key
// leaves obj untouched.
func (o Options) ReadOptions(key string, obj interface{}) error {
	raw, ok := o[key]
	if !ok || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, obj); err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot parse %q options: %s", key, err)
	}
	return nil
}

// Initializer loads the genesis state of an extension.
type Initializer interface {
	FromGenesis(Options, KVStore) error
}

// ChainInitializers runs the initializers in order and stops at the first
// failure.
func ChainInitializers(inits ...Initializer) Initializer {
	return initializers(inits)
}

type initializers []Initializer

func (all initializers) FromGenesis(opts Options, db KVStore) error {
	for _, init := range all {
		if err := init.FromGenesis(opts, db); err != nil {
			return err
		}
	}
	return nil
}
