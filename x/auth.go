package x

import (
	"github.com/iov-one/paygate"
)

// Authenticator is an interface we can use to extract authentication info
// from the context. This should be passed into the constructor of
// handlers, so we can plug in another authentication system,
// rather than hard-coding x/auth for all extensions.
type Authenticator interface {
	// GetConditions reveals all Conditions fulfilled
	GetConditions(paygate.Context) []paygate.Condition
	// HasAddress checks if any condition matches this address
	HasAddress(paygate.Context, paygate.Address) bool
}
