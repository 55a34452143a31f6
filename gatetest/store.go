package gatetest

import (
	"path/filepath"
	"testing"

	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/store/iavl"
)

// CommitKVStore returns a store instance that is using a filesystem backend
// engine to store the data. It is closed when the test finishes.
// This implementation should be used instead of an in-memory store when you
// want the exact same storage implementation as the production instance is
// using.
func CommitKVStore(t testing.TB) paygate.CommitKVStore {
	t.Helper()

	db, err := iavl.NewCommitStore(filepath.Join(t.TempDir(), "state"), "db")
	if err != nil {
		t.Fatalf("cannot create a commit store: %s", err)
	}
	t.Cleanup(db.Close)
	return db
}
