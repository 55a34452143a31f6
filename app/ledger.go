package app

import (
	"context"
	"sync"
	"time"

	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/errors"
	"github.com/iov-one/paygate/journal"
	"github.com/tendermint/tendermint/libs/log"
)

// Ledger executes calls against a committed store. Calls are processed one
// at a time, each on its own cache that is written only if the call
// succeeds. Notifications of successful deliveries are appended to the
// journal. A ledger that fails to append a notification halts: it rejects
// all further calls and never commits again.
type Ledger struct {
	mu sync.Mutex

	store   *CommitStore
	handler paygate.Handler
	queries paygate.QueryRouter
	journal journal.Journal
	logger  log.Logger

	chainID   string
	height    int64
	blockTime time.Time
	txIndex   int64

	debug  bool
	halted error
}

// LedgerOption customizes a Ledger created with NewLedger.
type LedgerOption func(*Ledger)

// WithJournal sets the journal that notifications are appended to. By
// default an in-memory journal is used.
func WithJournal(j journal.Journal) LedgerOption {
	return func(l *Ledger) { l.journal = j }
}

// WithQueries sets the router that serves state queries.
func WithQueries(qr paygate.QueryRouter) LedgerOption {
	return func(l *Ledger) { l.queries = qr }
}

// WithLedgerLogger sets the logger passed to every call.
func WithLedgerLogger(logger log.Logger) LedgerOption {
	return func(l *Ledger) { l.logger = logger }
}

// WithDebug makes ResultInfo expose the full message of internal errors.
func WithDebug(debug bool) LedgerOption {
	return func(l *Ledger) { l.debug = debug }
}

// NewLedger loads the latest state of the store. If the store was
// initialized before, the chain id and height are restored from it.
func NewLedger(kv paygate.CommitKVStore, h paygate.Handler, opts ...LedgerOption) (*Ledger, error) {
	store, err := NewCommitStore(kv)
	if err != nil {
		return nil, err
	}
	l := &Ledger{
		store:   store,
		handler: h,
		queries: paygate.NewQueryRouter(),
		journal: journal.NewMemJournal(),
		logger:  log.NewNopLogger(),
	}
	for _, fn := range opts {
		fn(l)
	}

	info, err := store.CommitInfo()
	if err != nil {
		return nil, errors.Wrap(err, "commit info")
	}
	l.height = info.Version
	if l.chainID, err = loadChainID(store.DeliverStore()); err != nil {
		return nil, err
	}
	return l, nil
}

// InitGenesis stores the chain id and passes the application state to the
// initializer. Genesis can be loaded only once.
func (l *Ledger) InitGenesis(gen Genesis, initializer paygate.Initializer) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	cache := l.store.DeliverStore().CacheWrap()
	if err := saveChainID(cache, gen.ChainID); err != nil {
		cache.Discard()
		return err
	}
	if initializer != nil {
		if err := initializer.FromGenesis(gen.AppState, cache); err != nil {
			cache.Discard()
			return errors.Wrap(err, "genesis")
		}
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "write genesis")
	}
	l.chainID = gen.ChainID
	l.logger.Info("genesis loaded", "chain_id", gen.ChainID)
	return nil
}

// BeginBlock starts a new block with given time. All calls until the next
// block observe the same time. Block time never goes backwards.
func (l *Ledger) BeginBlock(now time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.chainID == "" {
		return errors.Wrap(errors.ErrState, "genesis not loaded")
	}
	now = now.UTC()
	if now.IsZero() {
		return errors.Wrap(errors.ErrInput, "zero block time")
	}
	if now.Before(l.blockTime) {
		return errors.Wrapf(errors.ErrState, "block time %s before %s", now, l.blockTime)
	}
	l.height++
	l.blockTime = now
	l.txIndex = 0
	return nil
}

// Check validates the transaction against the delivered state, as if
// executed by given caller. Changes made by a check are always discarded.
func (l *Ledger) Check(ctx context.Context, caller []paygate.Condition, tx paygate.Tx) (*paygate.CheckResult, error) {
	if isCall(ctx) {
		return nil, errors.Wrap(errors.ErrReentrancy, "ledger")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	callCtx, err := l.callContext(ctx, caller)
	if err != nil {
		return nil, l.failed("check", tx, err)
	}
	cache := l.store.DeliverStore().CacheWrap()
	defer cache.Discard()
	res, err := l.check(callCtx, cache, tx)
	if err != nil {
		return nil, l.failed("check", tx, err)
	}
	return res, nil
}

// Deliver executes the transaction as given caller. State changes and
// notifications of a failed call are discarded.
func (l *Ledger) Deliver(ctx context.Context, caller []paygate.Condition, tx paygate.Tx) (*paygate.DeliverResult, error) {
	if isCall(ctx) {
		return nil, errors.Wrap(errors.ErrReentrancy, "ledger")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	callCtx, err := l.callContext(ctx, caller)
	if err != nil {
		return nil, l.failed("deliver", tx, err)
	}
	index := l.txIndex
	l.txIndex++

	cache := l.store.DeliverStore().CacheWrap()
	res, err := l.deliver(callCtx, cache, tx)
	if err != nil {
		cache.Discard()
		return nil, l.failed("deliver", tx, err)
	}
	if err := cache.Write(); err != nil {
		return nil, l.failed("deliver", tx, errors.Wrap(err, "write deliver cache"))
	}

	// The state of this call is already in the block. Without its
	// notification the block must never be committed.
	entry := journal.Entry{
		Height:  l.height,
		TxIndex: index,
		Path:    paygate.GetPath(tx),
		Tags:    res.Tags,
	}
	if err := l.journal.Append(entry); err != nil {
		l.halted = errors.Wrapf(err, "journal append at height %d", l.height)
		l.logger.Error("ledger halted", "err", l.halted)
		return nil, l.halted
	}
	return res, nil
}

// ResultInfo returns the code and the log message a client is given for
// the result of a call. Internal errors and recovered panics are reported
// with a generic message unless the ledger runs in debug mode.
func (l *Ledger) ResultInfo(err error) (uint32, string) {
	return errors.ABCIInfo(err, l.debug)
}

// failed must be called with the lock held.
func (l *Ledger) failed(op string, tx paygate.Tx, err error) error {
	code, info := errors.ABCIInfo(err, l.debug)
	l.logger.Debug("call failed", "op", op, "path", paygate.GetPath(tx), "code", code, "log", info)
	return err
}

func (l *Ledger) check(ctx paygate.Context, db paygate.KVStore, tx paygate.Tx) (res *paygate.CheckResult, err error) {
	defer errors.Recover(&err)
	return l.handler.Check(ctx, db, tx)
}

func (l *Ledger) deliver(ctx paygate.Context, db paygate.KVStore, tx paygate.Tx) (res *paygate.DeliverResult, err error) {
	defer errors.Recover(&err)
	return l.handler.Deliver(ctx, db, tx)
}

// callContext must be called with the lock held.
func (l *Ledger) callContext(ctx context.Context, caller []paygate.Condition) (paygate.Context, error) {
	if l.halted != nil {
		return nil, errors.Wrap(l.halted, "ledger halted")
	}
	if l.blockTime.IsZero() {
		return nil, errors.Wrap(errors.ErrState, "no block started")
	}
	ctx = context.WithValue(ctx, contextKeyCall, true)
	ctx = paygate.WithHeight(ctx, l.height)
	ctx = paygate.WithChainID(ctx, l.chainID)
	ctx = paygate.WithBlockTime(ctx, l.blockTime)
	ctx = paygate.WithLogger(ctx, l.logger)
	ctx = paygate.WithLogInfo(ctx, "height", l.height, "chain_id", l.chainID)
	return withCaller(ctx, caller), nil
}

func isCall(ctx context.Context) bool {
	_, ok := ctx.Value(contextKeyCall).(bool)
	return ok
}

// Commit persists all delivered changes and returns the new state hash.
func (l *Ledger) Commit() (paygate.CommitID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.halted != nil {
		return paygate.CommitID{}, errors.Wrap(l.halted, "ledger halted")
	}
	return l.store.Commit()
}

// Query reads delivered state using the registered query handlers.
func (l *Ledger) Query(path string, data []byte) ([]paygate.Model, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.queries.Query(l.store.DeliverStore(), path, data)
}

// Journal returns the notification log of the ledger.
func (l *Ledger) Journal() journal.Journal {
	return l.journal
}

// ChainID returns the chain id set at genesis.
func (l *Ledger) ChainID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.chainID
}

// Height returns the height of the current block.
func (l *Ledger) Height() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.height
}
