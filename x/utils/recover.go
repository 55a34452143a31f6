package utils

import (
	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/errors"
)

// Recovery is a decorator to recover from panics in calls,
// so we can log them as errors
type Recovery struct{}

var _ paygate.Decorator = Recovery{}

// NewRecovery creates a Recovery decorator
func NewRecovery() Recovery {
	return Recovery{}
}

// Check turns panics into normal errors
func (r Recovery) Check(ctx paygate.Context, store paygate.KVStore, tx paygate.Tx, next paygate.Checker) (_ *paygate.CheckResult, err error) {
	defer errors.Recover(&err)
	return next.Check(ctx, store, tx)
}

// Deliver turns panics into normal errors
func (r Recovery) Deliver(ctx paygate.Context, store paygate.KVStore, tx paygate.Tx, next paygate.Deliverer) (_ *paygate.DeliverResult, err error) {
	defer errors.Recover(&err)
	return next.Deliver(ctx, store, tx)
}
