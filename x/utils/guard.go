package utils

import (
	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/errors"
	"go.uber.org/atomic"
)

// Guard is a reentrancy lock. While a call is executed by the decorated
// handler, any other call entering through the same guard is rejected with
// ErrReentrancy. The lock is released when the call returns, regardless of
// the result.
//
// A single guard should be shared by all mutating handlers of an
// extension, so that none of them can be entered from within another.
type Guard struct {
	locked *atomic.Bool
}

var _ paygate.Decorator = Guard{}

// NewGuard returns an unlocked guard.
func NewGuard() Guard {
	return Guard{locked: atomic.NewBool(false)}
}

// Locked returns true while a call is executed.
func (g Guard) Locked() bool {
	return g.locked.Load()
}

func (g Guard) enter(tx paygate.Tx) error {
	if !g.locked.CAS(false, true) {
		return errors.Wrapf(errors.ErrReentrancy, "%s", paygate.GetPath(tx))
	}
	return nil
}

// Check rejects nested calls.
func (g Guard) Check(ctx paygate.Context, store paygate.KVStore, tx paygate.Tx, next paygate.Checker) (*paygate.CheckResult, error) {
	if err := g.enter(tx); err != nil {
		return nil, err
	}
	defer g.locked.Store(false)
	return next.Check(ctx, store, tx)
}

// Deliver rejects nested calls.
func (g Guard) Deliver(ctx paygate.Context, store paygate.KVStore, tx paygate.Tx, next paygate.Deliverer) (*paygate.DeliverResult, error) {
	if err := g.enter(tx); err != nil {
		return nil, err
	}
	defer g.locked.Store(false)
	return next.Deliver(ctx, store, tx)
}
