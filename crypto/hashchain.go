package crypto

import (
	"bytes"

	"github.com/iov-one/paygate/errors"
)

// MaxChainLength is the longest hash chain that can be built or verified.
// It bounds the verification cost of a single claim.
const MaxChainLength = 65535

// HashChain is a sequence of values where every element is the hash of the
// element that follows it. The last element is the secret seed and the
// first one is the anchor, which is published upfront.
//
//	chain[i] = H(chain[i+1]), chain[0] = H^n(seed)
type HashChain struct {
	h      Hasher
	values [][]byte
}

// NewHashChain computes a chain of given length starting from a secret
// seed. The chain holds length+1 values.
func NewHashChain(h Hasher, seed []byte, length int) (*HashChain, error) {
	if length < 1 || length > MaxChainLength {
		return nil, errors.Wrapf(errors.ErrInput, "chain length %d not in [1, %d]", length, MaxChainLength)
	}
	if len(seed) == 0 {
		return nil, errors.Wrap(errors.ErrEmpty, "seed")
	}
	values := make([][]byte, length+1)
	values[length] = append([]byte(nil), seed...)
	for i := length - 1; i >= 0; i-- {
		values[i] = h.Sum(values[i+1])
	}
	return &HashChain{h: h, values: values}, nil
}

// Len returns the number of ticks the chain can prove.
func (c *HashChain) Len() int {
	return len(c.values) - 1
}

// Anchor returns the published commitment, H^n(seed).
func (c *HashChain) Anchor() []byte {
	return c.values[0]
}

// Preimage returns the value that proves given amount of ticks. Hashing the
// result ticks times gives the anchor.
func (c *HashChain) Preimage(ticks int) ([]byte, error) {
	if ticks < 0 || ticks > c.Len() {
		return nil, errors.Wrapf(errors.ErrInput, "ticks %d not in [0, %d]", ticks, c.Len())
	}
	return c.values[ticks], nil
}

// VerifyHashChain returns true if hashing preimage exactly ticks times with
// given hasher results in the anchor. Verification of more than
// MaxChainLength ticks is always rejected.
func VerifyHashChain(h Hasher, anchor, preimage []byte, ticks int) bool {
	if ticks < 0 || ticks > MaxChainLength {
		return false
	}
	v := preimage
	for i := 0; i < ticks; i++ {
		v = h.Sum(v)
	}
	return bytes.Equal(v, anchor)
}
