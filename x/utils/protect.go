package utils

import (
	"github.com/iov-one/paygate"
)

// Protect wraps a mutating handler with the guard and a savepoint active
// on both check and deliver. Nested calls are rejected and a failed call
// leaves no trace in the store.
func Protect(g Guard, h paygate.Handler) paygate.Handler {
	return decorated{
		d:    g,
		next: decorated{d: NewSavepoint().OnCheck().OnDeliver(), next: h},
	}
}

type decorated struct {
	d    paygate.Decorator
	next paygate.Handler
}

func (s decorated) Check(ctx paygate.Context, store paygate.KVStore, tx paygate.Tx) (*paygate.CheckResult, error) {
	return s.d.Check(ctx, store, tx, s.next)
}

func (s decorated) Deliver(ctx paygate.Context, store paygate.KVStore, tx paygate.Tx) (*paygate.DeliverResult, error) {
	return s.d.Deliver(ctx, store, tx, s.next)
}
