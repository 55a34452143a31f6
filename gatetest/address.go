package gatetest

import (
	"testing"

	"github.com/iov-one/paygate"
)

// ParseAddress takes an address in a human readable format and returns its
// binary representation.
func ParseAddress(t testing.TB, encodedAddress string) paygate.Address {
	t.Helper()

	addr, err := paygate.ParseAddress(encodedAddress)
	if err != nil {
		t.Fatalf("cannot parse %q address: %s", encodedAddress, err)
	}
	return addr
}
