package app

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
)

// CommitStore keeps the committed state together with the two caches
// built on top of it, one per ABCI connection. Check and deliver never see
// each other's writes until a commit.
type CommitStore struct {
	committed barter.CommitKVStore
	deliver   barter.KVCacheWrap
	check     barter.KVCacheWrap
}

// NewCommitStore loads the latest version of store.
func NewCommitStore(store barter.CommitKVStore) (*CommitStore, error) {
	if err := store.LoadLatestVersion(); err != nil {
		return nil, errors.Wrap(err, "load latest version")
	}
	cs := &CommitStore{committed: store}
	cs.reset()
	return cs, nil
}

func (cs *CommitStore) reset() {
	cs.deliver = cs.committed.CacheWrap()
	cs.check = cs.committed.CacheWrap()
}

// CommitInfo returns the height and hash of the last commit.
func (cs *CommitStore) CommitInfo() (barter.CommitID, error) {
	return cs.committed.LatestVersion()
}

// Commit persists everything delivered since the last commit as a new
// version. Pending check state is dropped and both caches start over.
func (cs *CommitStore) Commit() (barter.CommitID, error) {
	if err := cs.deliver.Write(); err != nil {
		return barter.CommitID{}, errors.Wrap(err, "flush deliver cache")
	}
	cs.check.Discard()
	id, err := cs.committed.Commit()
	if err != nil {
		return id, errors.Wrap(err, "commit")
	}
	cs.reset()
	return id, nil
}

func (cs *CommitStore) CheckStore() barter.CacheableKVStore   { return cs.check }
func (cs *CommitStore) DeliverStore() barter.CacheableKVStore { return cs.deliver }

// chainIDKey lives under the "_bt:" prefix reserved for the application.
var chainIDKey = []byte("_bt:chainID")

func loadChainID(db barter.ReadOnlyKVStore) (string, error) {
	raw, err := db.Get(chainIDKey)
	if err != nil {
		return "", errors.Wrap(err, "load chain id")
	}
	return string(raw), nil
}

// saveChainID writes the chain id once. A second call is refused.
func saveChainID(db barter.KVStore, chainID string) error {
	if !barter.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}
	switch exists, err := db.Has(chainIDKey); {
	case err != nil:
		return errors.Wrap(err, "load chain id")
	case exists:
		return errors.Wrap(errors.ErrUnauthorized, "can't modify chain id after genesis init")
	}
	return errors.Wrap(db.Set(chainIDKey, []byte(chainID)), "save chain id")
}
