package app

import (
	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/errors"
)

// CommitStore handles loading from a CommitKVStore, maintaining the cache
// wrap of the current block, and returning useful state info.
type CommitStore struct {
	committed paygate.CommitKVStore
	deliver   paygate.KVCacheWrap
}

// NewCommitStore loads the latest version of the store and sets up the
// deliver cache.
func NewCommitStore(store paygate.CommitKVStore) (*CommitStore, error) {
	if err := store.LoadLatestVersion(); err != nil {
		return nil, errors.Wrap(err, "load latest version")
	}
	return &CommitStore{
		committed: store,
		deliver:   store.CacheWrap(),
	}, nil
}

// CommitInfo returns the current height and hash.
func (cs *CommitStore) CommitInfo() (paygate.CommitID, error) {
	return cs.committed.LatestVersion()
}

// Commit will flush deliver to the underlying store and persist it. It
// then regenerates a new deliver cache.
func (cs *CommitStore) Commit() (paygate.CommitID, error) {
	if err := cs.deliver.Write(); err != nil {
		return paygate.CommitID{}, errors.Wrap(err, "write deliver cache")
	}

	res, err := cs.committed.Commit()
	if err != nil {
		return res, err
	}

	cs.deliver = cs.committed.CacheWrap()
	return res, nil
}

// DeliverStore returns the state of the current block. Checks run on a
// cache wrap of it that is never written.
func (cs *CommitStore) DeliverStore() paygate.CacheableKVStore {
	return cs.deliver
}

// _pg: is a prefix for ledger internal data
const chainIDKey = "_pg:chainID"

// loadChainID returns the stored chain id, if any.
func loadChainID(kv paygate.ReadOnlyKVStore) (string, error) {
	v, err := kv.Get([]byte(chainIDKey))
	if err != nil {
		return "", errors.Wrap(err, "load chain id")
	}
	return string(v), nil
}

// saveChainID stores a chain id in the kv store.
// Returns error if already set, or invalid name
func saveChainID(kv paygate.KVStore, chainID string) error {
	if !paygate.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}
	k := []byte(chainIDKey)
	exists, err := kv.Has(k)
	if err != nil {
		return errors.Wrap(err, "load chain id")
	}
	if exists {
		return errors.Wrap(errors.ErrUnauthorized, "can't modify chain id after genesis init")
	}
	if err := kv.Set(k, []byte(chainID)); err != nil {
		return errors.Wrap(err, "save chain id")
	}
	return nil
}
