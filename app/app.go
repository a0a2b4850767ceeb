package app

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// StoreApp hosts the ledger state. It owns the committed store and the
// check/deliver caches, initializes extensions from the genesis application
// state and runs messages through a handler stack block by block.
//
// Calls are not safe for concurrent use. The host is expected to serialize
// them, which gives every state change a single linear order.
type StoreApp struct {
	logger log.Logger
	name   string
	store  *CommitStore

	initializer barter.Initializer
	handler     barter.Handler
	debug       bool

	// chainID is persisted once by InitChain.
	chainID string

	// baseContext holds the values that never change, the chain id and
	// the logger. blockContext extends it with the height and time of the
	// current block.
	baseContext  barter.Context
	blockContext barter.Context
}

// NewStoreApp resumes from the latest committed version of store.
func NewStoreApp(name string, store barter.CommitKVStore, handler barter.Handler, baseContext barter.Context) (*StoreApp, error) {
	cs, err := NewCommitStore(store)
	if err != nil {
		return nil, err
	}
	s := &StoreApp{
		name:        name,
		store:       cs,
		handler:     handler,
		baseContext: baseContext,
	}
	s = s.WithLogger(log.NewNopLogger())

	s.chainID, err = loadChainID(cs.DeliverStore())
	if err != nil {
		return nil, err
	}
	if s.chainID != "" {
		s.baseContext = barter.WithChainID(s.baseContext, s.chainID)
	}

	info, err := cs.CommitInfo()
	if err != nil {
		return nil, errors.Wrap(err, "commit info")
	}
	s.blockContext = barter.WithHeight(s.baseContext, info.Version)
	return s, nil
}

// WithInit sets the genesis initializer.
func (s *StoreApp) WithInit(init barter.Initializer) *StoreApp {
	s.initializer = init
	return s
}

// WithDebug controls whether error results carry full error details.
func (s *StoreApp) WithDebug(debug bool) *StoreApp {
	s.debug = debug
	return s
}

// WithLogger replaces the logger of the app and of every context it creates.
func (s *StoreApp) WithLogger(logger log.Logger) *StoreApp {
	s.baseContext = barter.WithLogger(s.baseContext, logger)
	s.logger = logger
	return s
}

func (s *StoreApp) Logger() log.Logger {
	return s.logger
}

func (s *StoreApp) GetChainID() string {
	return s.chainID
}

// BlockContext is the context handlers of the current block run with.
func (s *StoreApp) BlockContext() barter.Context {
	return s.blockContext
}

func (s *StoreApp) DeliverStore() barter.CacheableKVStore {
	return s.store.DeliverStore()
}

func (s *StoreApp) CheckStore() barter.CacheableKVStore {
	return s.store.CheckStore()
}

// Info returns the name of the application and the last committed version.
func (s *StoreApp) Info() (string, barter.CommitID, error) {
	info, err := s.store.CommitInfo()
	if err != nil {
		return s.name, info, errors.Wrap(err, "commit info")
	}
	s.logger.Info("state loaded", "height", info.Version, "hash", fmt.Sprintf("%X", info.Hash))
	return s.name, info, nil
}

// InitChain stores the chain id and passes the genesis application state to
// the initializer. It can be called only once for the lifetime of the state.
func (s *StoreApp) InitChain(chainID string, appState []byte) error {
	if s.chainID != "" {
		return errors.Wrapf(errors.ErrState, "app state previously loaded for chain %q", s.chainID)
	}
	if len(appState) == 0 {
		return errors.Wrap(errors.ErrEmpty, "app state not set in genesis")
	}
	var opts barter.Options
	if err := json.Unmarshal(appState, &opts); err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot parse app state: %s", err)
	}
	if err := saveChainID(s.DeliverStore(), chainID); err != nil {
		return err
	}
	s.chainID = chainID
	s.baseContext = barter.WithChainID(s.baseContext, chainID)
	s.blockContext = barter.WithHeight(s.baseContext, 0)

	if s.initializer == nil {
		s.logger.Info("genesis without initializer")
		return nil
	}
	if err := s.initializer.FromGenesis(opts, s.DeliverStore()); err != nil {
		return errors.Wrap(err, "genesis initialization")
	}
	return nil
}

// BeginBlock resets the block context with given height and time.
func (s *StoreApp) BeginBlock(height int64, now time.Time) {
	ctx := barter.WithHeight(s.baseContext, height)
	s.blockContext = barter.WithBlockTime(ctx, now)
}

// CheckTx runs the check phase of the handler against the check cache.
func (s *StoreApp) CheckTx(tx barter.Tx) (*barter.CheckResult, error) {
	ctx := barter.WithLogInfo(s.blockContext, "call", "check_tx")
	res, err := s.handler.Check(ctx, s.CheckStore(), tx)
	return res, errors.Redact(err, s.debug)
}

// DeliverTx runs the deliver phase of the handler against the deliver cache.
// Changes become durable on the next Commit.
func (s *StoreApp) DeliverTx(tx barter.Tx) (*barter.DeliverResult, error) {
	ctx := barter.WithLogInfo(s.blockContext, "call", "deliver_tx")
	res, err := s.handler.Deliver(ctx, s.DeliverStore(), tx)
	return res, errors.Redact(err, s.debug)
}

// Commit persists all delivered changes.
func (s *StoreApp) Commit() (barter.CommitID, error) {
	id, err := s.store.Commit()
	if err != nil {
		return id, err
	}
	s.logger.Debug("block committed", "height", id.Version, "hash", fmt.Sprintf("%X", id.Hash))
	return id, nil
}
