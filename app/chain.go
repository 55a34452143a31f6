package app

import (
	"reflect"

	"github.com/iov-one/paygate"
)

// Decorators holds a chain of decorators, not yet resolved by a Handler
type Decorators struct {
	chain []paygate.Decorator
}

/*
ChainDecorators takes a chain of decorators,
and upon adding a final Handler (often a Router),
returns a Handler that will execute this whole stack.

  app.ChainDecorators(
    utils.NewLogging(),
    utils.NewRecovery(),
    utils.NewActionTagger(),
    guard,
    utils.NewSavepoint().OnCheck().OnDeliver(),
  ).WithHandler(
    router,
  )
*/
func ChainDecorators(chain ...paygate.Decorator) Decorators {
	chain = cutoffNil(chain)
	return Decorators{}.Chain(chain...)
}

// Chain allows us to keep adding more Decorators to the chain
func (d Decorators) Chain(chain ...paygate.Decorator) Decorators {
	chain = cutoffNil(chain)
	newChain := append(d.chain, chain...)
	return Decorators{newChain}
}

// cutoffNil will in-place remove all all nil values from given slice.
func cutoffNil(ds []paygate.Decorator) []paygate.Decorator {
	var cutoff int
	for i := 0; i < len(ds); i++ {
		ds[i-cutoff] = ds[i]
		if ds[i] == nil || (reflect.ValueOf(ds[i]).Kind() == reflect.Ptr && reflect.ValueOf(ds[i]).IsNil()) {
			cutoff++
		}
	}
	return ds[:len(ds)-cutoff]
}

// WithHandler resolves the stack and returns a concrete Handler
// that will pass through the chain of decorators before calling
// the final Handler.
func (d Decorators) WithHandler(h paygate.Handler) paygate.Handler {
	// start wrapping the handler from last decorator to first one
	// as the top of the chain is understood to be executed first
	for i := len(d.chain) - 1; i >= 0; i-- {
		h = step{d: d.chain[i], next: h}
	}
	return h
}

//------------------ internal types to build chain ---------------

// step captures one step executing a decorator around a
// specific Handler. Simplified version of a closure.
//
type step struct {
	d    paygate.Decorator
	next paygate.Handler
}

var _ paygate.Handler = step{}

// Check passes the handler into the decorator, implements Handler
func (s step) Check(ctx paygate.Context, store paygate.KVStore, tx paygate.Tx) (*paygate.CheckResult, error) {
	return s.d.Check(ctx, store, tx, s.next)
}

// Deliver passes the handler into the decorator, implements Handler
func (s step) Deliver(ctx paygate.Context, store paygate.KVStore, tx paygate.Tx) (*paygate.DeliverResult, error) {
	return s.d.Deliver(ctx, store, tx, s.next)
}
