package app

import (
	"context"

	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/x"
)

type contextKey int

const (
	contextKeyCaller contextKey = iota
	contextKeyCall
)

// withCaller attaches the authenticated caller of a call to the context.
func withCaller(ctx paygate.Context, caller []paygate.Condition) paygate.Context {
	return context.WithValue(ctx, contextKeyCaller, caller)
}

// CallerAuth authenticates the conditions the Ledger was called with.
// Message content is never considered.
type CallerAuth struct{}

var _ x.Authenticator = CallerAuth{}

func (CallerAuth) GetConditions(ctx paygate.Context) []paygate.Condition {
	val, _ := ctx.Value(contextKeyCaller).([]paygate.Condition)
	return val
}

func (a CallerAuth) HasAddress(ctx paygate.Context, addr paygate.Address) bool {
	for _, c := range a.GetConditions(ctx) {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}
