package gatetest

import (
	"fmt"

	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/crypto"
	"go.uber.org/atomic"
)

var keyCounter atomic.Uint64

// NewKey returns a new secp256k1 key. Keys are derived from an increasing
// counter so that test runs are reproducible.
func NewKey() *crypto.Secp256k1Key {
	n := keyCounter.Inc()
	return crypto.Secp256k1KeyFromSeed([]byte(fmt.Sprintf("gatetest key %d", n)))
}

// NewCondition returns the condition of a new key.
func NewCondition() paygate.Condition {
	return NewKey().Condition()
}
