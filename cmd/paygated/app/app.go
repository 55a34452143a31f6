/*
Package app links together all the various components
to construct a paygate ledger.
*/
package app

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/app"
	"github.com/iov-one/paygate/crypto"
	"github.com/iov-one/paygate/journal"
	"github.com/iov-one/paygate/store/iavl"
	"github.com/iov-one/paygate/x"
	"github.com/iov-one/paygate/x/asset"
	"github.com/iov-one/paygate/x/cash"
	"github.com/iov-one/paygate/x/currency"
	"github.com/iov-one/paygate/x/hashchan"
	"github.com/iov-one/paygate/x/sigchan"
	"github.com/iov-one/paygate/x/utils"
	"github.com/tendermint/tendermint/libs/log"
)

// Authenticator returns the authentication used by all handlers. Callers
// are authenticated by the ledger before a call is executed.
func Authenticator() x.Authenticator {
	return app.CallerAuth{}
}

// Chain returns a chain of decorators, to handle logging, recovery and
// tagging of executed actions.
func Chain() app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		utils.NewActionTagger(),
	)
}

// Router returns a router dispatching to all payment extensions. Both
// channel engines share a single guard, so that a call being executed by
// one engine cannot enter the other one.
func Router(authFn x.Authenticator, issuer paygate.Address) *app.Router {
	r := app.NewRouter()
	rec := crypto.Secp256k1Recoverer{}
	ctrl := cash.NewController()
	resolver := asset.NewResolver(ctrl, rec)
	guard := utils.NewGuard()

	cash.RegisterRoutes(r, authFn, ctrl)
	currency.RegisterRoutes(r, authFn, issuer)
	asset.RegisterRoutes(r, authFn, resolver)
	hashchan.RegisterRoutes(r, authFn, resolver, guard)
	sigchan.RegisterRoutes(r, authFn, resolver, rec, guard)
	return r
}

// QueryRouter returns a default query router, allowing access to
// "/wallets", "/tokens", "/allowances", "/hashchans" and "/sigchans".
func QueryRouter() paygate.QueryRouter {
	r := paygate.NewQueryRouter()
	r.RegisterAll(
		cash.RegisterQuery,
		currency.RegisterQuery,
		asset.RegisterQuery,
		hashchan.RegisterQuery,
		sigchan.RegisterQuery,
	)
	return r
}

// Initializers returns the genesis initializers of all extensions.
func Initializers() paygate.Initializer {
	return app.ChainInitializers(
		asset.Initializer{},
		&currency.Initializer{},
		cash.Initializer{},
		hashchan.Initializer{},
		sigchan.Initializer{},
	)
}

// Stack wires up a standard router with a standard decorator chain.
func Stack(issuer paygate.Address) paygate.Handler {
	authFn := Authenticator()
	return Chain().WithHandler(Router(authFn, issuer))
}

// Logger returns a logger writing to out, filtered by given level, ie.
// "info" or "main:info,*:error".
func Logger(out io.Writer, level string) (log.Logger, error) {
	logger := log.NewTMLogger(log.NewSyncWriter(out))
	if level == "" {
		return logger, nil
	}
	opt, err := log.AllowLevel(level)
	if err != nil {
		return nil, err
	}
	return log.NewFilter(logger, opt), nil
}

// NewLedger returns a ledger executing the standard stack on top of the
// store at dbPath. An empty dbPath returns a ledger backed by memory. When
// no journal is given, notifications are kept in memory.
func NewLedger(dbPath string, issuer paygate.Address, j journal.Journal, logger log.Logger) (*app.Ledger, error) {
	kv, err := CommitKVStore(dbPath)
	if err != nil {
		return nil, err
	}
	opts := []app.LedgerOption{
		app.WithQueries(QueryRouter()),
		app.WithLedgerLogger(logger),
	}
	if j != nil {
		opts = append(opts, app.WithJournal(j))
	}
	return app.NewLedger(kv, Stack(issuer), opts...)
}

// OpenJournal opens the notification journal stored at path. An empty path
// returns a journal kept in memory.
func OpenJournal(path string) (journal.Journal, error) {
	if path == "" {
		return journal.NewMemJournal(), nil
	}
	return journal.OpenBolt(path)
}

// CommitKVStore returns an initialized KVStore that persists
// the data to the named path.
func CommitKVStore(dbPath string) (paygate.CommitKVStore, error) {
	// memory backed case, just for testing
	if dbPath == "" {
		return iavl.NewMemCommitStore()
	}

	// Expand the path fully
	path, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("invalid database name: %s", path)
	}

	// Some external calls accidently add a ".db", which is now removed
	path = strings.TrimSuffix(path, filepath.Ext(path))

	// Split the database name into it's components (dir, name)
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	return iavl.NewCommitStore(dir, name)
}
