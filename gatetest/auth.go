package gatetest

import (
	"context"
	"fmt"

	"github.com/iov-one/paygate"
)

// Auth is a mock implementing x.Authenticator interface.
//
// This structure authenticates any of referenced conditions.
// You can use either Signer or Signers (or both) attributes to reference
// conditions. Each time all signers (regardless which attribute) are
// considered.
type Auth struct {
	// Signer represents an authentication of a single signer.
	Signer paygate.Condition

	// Signers represents an authentication of multiple signers.
	Signers []paygate.Condition
}

func (a *Auth) GetConditions(paygate.Context) []paygate.Condition {
	if a.Signer != nil {
		return append(append([]paygate.Condition(nil), a.Signers...), a.Signer)
	}
	return a.Signers
}

func (a *Auth) HasAddress(ctx paygate.Context, addr paygate.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}

// CtxAuth is a mock implementing x.Authenticator interface.
//
// This implementation is using context to store and retrieve conditions.
type CtxAuth struct {
	// Key used to set and retrieve conditions from the context. For
	// convenience only string type keys are allowed.
	Key string
}

func (a *CtxAuth) SetConditions(ctx paygate.Context, conds ...paygate.Condition) paygate.Context {
	return context.WithValue(ctx, a.Key, conds)
}

func (a *CtxAuth) GetConditions(ctx paygate.Context) []paygate.Condition {
	val := ctx.Value(a.Key)
	if val == nil {
		return nil
	}
	conds, ok := val.([]paygate.Condition)
	if !ok {
		panic(fmt.Sprintf("instead of []paygate.Condition got %T", val))
	}
	return conds
}

func (a *CtxAuth) HasAddress(ctx paygate.Context, addr paygate.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}
