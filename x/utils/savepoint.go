package utils

import (
	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/errors"
)

// Savepoint will isolate all data inside of the call,
// and commit/rollback to savepoint based on if error
type Savepoint struct {
	onCheck   bool
	onDeliver bool
}

var _ paygate.Decorator = Savepoint{}

// NewSavepoint creates a Savepoint decorator,
// but you must call OnCheck/OnDeliver so it will be triggered
func NewSavepoint() Savepoint {
	return Savepoint{}
}

// OnCheck returns a savepoint that will trigger on Check
func (s Savepoint) OnCheck() Savepoint {
	return Savepoint{
		onCheck:   true,
		onDeliver: s.onDeliver,
	}
}

// OnDeliver returns a savepoint that will trigger on Deliver
func (s Savepoint) OnDeliver() Savepoint {
	return Savepoint{
		onCheck:   s.onCheck,
		onDeliver: true,
	}
}

// Check will optionally set a checkpoint
func (s Savepoint) Check(ctx paygate.Context, store paygate.KVStore, tx paygate.Tx, next paygate.Checker) (*paygate.CheckResult, error) {
	if !s.onCheck {
		return next.Check(ctx, store, tx)
	}
	cache, err := cacheWrap(store)
	if err != nil {
		return nil, err
	}
	res, err := next.Check(ctx, cache, tx)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(err, "writing savepoint")
	}
	return res, nil
}

// Deliver will optionally set a checkpoint
func (s Savepoint) Deliver(ctx paygate.Context, store paygate.KVStore, tx paygate.Tx, next paygate.Deliverer) (*paygate.DeliverResult, error) {
	if !s.onDeliver {
		return next.Deliver(ctx, store, tx)
	}
	cache, err := cacheWrap(store)
	if err != nil {
		return nil, err
	}
	res, err := next.Deliver(ctx, cache, tx)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(err, "writing savepoint")
	}
	return res, nil
}

// cacheWrap returns an isolated layer over the store. A store that cannot
// be rolled back cannot provide the savepoint guarantee and is rejected.
func cacheWrap(store paygate.KVStore) (paygate.KVCacheWrap, error) {
	cstore, ok := store.(paygate.CacheableKVStore)
	if !ok {
		return nil, errors.Wrapf(errors.ErrHuman, "savepoint requires a cacheable store, got %T", store)
	}
	return cstore.CacheWrap(), nil
}
