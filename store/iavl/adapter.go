/*
Package iavl provides a persistent CommitKVStore backed by a merkle iavl
tree stored in a goleveldb database. All writes go through a btree cache
wrap and reach the tree only when the cache is written. The tree version is
saved on Commit.
*/
package iavl

import (
	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/errors"
	"github.com/iov-one/paygate/store"
	"github.com/tendermint/iavl"
	dbm "github.com/tendermint/tendermint/libs/db"
)

// DefaultCacheSize is the number of tree nodes kept in memory.
const DefaultCacheSize = 10000

// CommitStore manages a iavl committed state
type CommitStore struct {
	db   dbm.DB
	tree *iavl.MutableTree
}

var _ paygate.CommitKVStore = (*CommitStore)(nil)

// NewCommitStore creates a new store with disk backing. The latest saved
// version is loaded.
func NewCommitStore(path, name string) (*CommitStore, error) {
	db, err := dbm.NewGoLevelDB(name, path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "cannot open database: %s", err)
	}
	return newCommitStore(db)
}

// NewMemCommitStore creates a new store backed by an in-memory database. It
// behaves exactly like the disk backed version, but nothing is persisted.
func NewMemCommitStore() (*CommitStore, error) {
	return newCommitStore(dbm.NewMemDB())
}

func newCommitStore(db dbm.DB) (*CommitStore, error) {
	s := &CommitStore{
		db:   db,
		tree: iavl.NewMutableTree(db, DefaultCacheSize),
	}
	if err := s.LoadLatestVersion(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Get returns the value at last committed state
// returns nil iff key doesn't exist. Panics on nil key.
func (s *CommitStore) Get(key []byte) ([]byte, error) {
	_, val := s.tree.GetVersioned(key, s.tree.Version())
	return val, nil
}

// Commit the next version to disk, and returns info
func (s *CommitStore) Commit() (paygate.CommitID, error) {
	hash, version, err := s.tree.SaveVersion()
	if err != nil {
		return paygate.CommitID{}, errors.Wrapf(errors.ErrDatabase, "cannot save version: %s", err)
	}
	return paygate.CommitID{
		Version: version,
		Hash:    hash,
	}, nil
}

// LoadLatestVersion loads the latest persisted version.
// If there was a crash during the last commit, it is guaranteed
// to return a stable state, even if older.
func (s *CommitStore) LoadLatestVersion() error {
	if _, err := s.tree.Load(); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "cannot load tree: %s", err)
	}
	return nil
}

// LatestVersion returns info on the latest version saved to disk
func (s *CommitStore) LatestVersion() (paygate.CommitID, error) {
	return paygate.CommitID{
		Version: s.tree.Version(),
		Hash:    s.tree.Hash(),
	}, nil
}

// CacheWrap gives us a savepoint to perform actions. Written cache is
// applied to the working tree, not yet committed.
func (s *CommitStore) CacheWrap() paygate.KVCacheWrap {
	w := &working{tree: s.tree}
	return store.NewBTreeCacheWrap(w, w.NewBatch(), nil)
}

// Close releases the database.
func (s *CommitStore) Close() {
	s.db.Close()
}

// working provides access to the working (uncommitted) tree.
type working struct {
	tree *iavl.MutableTree
}

var _ paygate.KVStore = (*working)(nil)

// Get returns nil iff key doesn't exist. Panics on nil key.
func (w *working) Get(key []byte) ([]byte, error) {
	_, val := w.tree.Get(key)
	return val, nil
}

// Has checks if a key exists. Panics on nil key.
func (w *working) Has(key []byte) (bool, error) {
	return w.tree.Has(key), nil
}

// Set adds a new value
func (w *working) Set(key, value []byte) error {
	w.tree.Set(key, value)
	return nil
}

// Delete removes from the tree
func (w *working) Delete(key []byte) error {
	w.tree.Remove(key)
	return nil
}

// NewBatch returns a batch that can write multiple ops atomically
func (w *working) NewBatch() paygate.Batch {
	return store.NewNonAtomicBatch(w)
}

// Iterator over a domain of keys in ascending order. End is exclusive.
// Start must be less than end, or the Iterator is invalid.
// CONTRACT: No writes may happen within a domain while an iterator exists over it.
func (w *working) Iterator(start, end []byte) (paygate.Iterator, error) {
	return store.NewSliceIterator(w.collect(start, end, true)), nil
}

// ReverseIterator over a domain of keys in descending order. End is exclusive.
// CONTRACT: No writes may happen within a domain while an iterator exists over it.
func (w *working) ReverseIterator(start, end []byte) (paygate.Iterator, error) {
	return store.NewSliceIterator(w.collect(start, end, false)), nil
}

func (w *working) collect(start, end []byte, ascending bool) []paygate.Model {
	var res []paygate.Model
	w.tree.IterateRange(start, end, ascending, func(key, value []byte) bool {
		res = append(res, paygate.Model{Key: key, Value: value})
		// Returning true would stop the iteration.
		return false
	})
	return res
}
