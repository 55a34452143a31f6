package crypto

import (
	"testing"

	"github.com/iov-one/paygate/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecp256k1SignRecover(t *testing.T) {
	key, err := GenSecp256k1Key()
	require.NoError(t, err)

	msg := []byte("pay 10 ETH")
	sig, err := key.Sign(msg)
	require.NoError(t, err)
	require.Len(t, sig, SignatureSize)

	var r Recoverer = Secp256k1Recoverer{}
	addr, err := r.Recover(msg, sig)
	require.NoError(t, err)
	assert.Equal(t, key.Address(), addr)
	require.NoError(t, addr.Validate())

	// A different message recovers a different (unrelated) signer.
	other, err := r.Recover([]byte("pay 11 ETH"), sig)
	if err == nil {
		assert.NotEqual(t, key.Address(), other)
	}
}

func TestSecp256k1Condition(t *testing.T) {
	key := Secp256k1KeyFromSeed([]byte("alice"))
	ext, typ, data, err := key.Condition().Parse()
	require.NoError(t, err)
	assert.Equal(t, ExtensionName, ext)
	assert.Equal(t, "secp256k1", typ)
	assert.Equal(t, key.PublicKey(), data)
	assert.Len(t, key.PublicKey(), 33)

	again := Secp256k1KeyFromSeed([]byte("alice"))
	assert.Equal(t, key.Address(), again.Address())
	assert.NotEqual(t, key.Address(), Secp256k1KeyFromSeed([]byte("bob")).Address())
}

func TestSecp256k1RecoverMalformed(t *testing.T) {
	r := Secp256k1Recoverer{}

	_, err := r.Recover([]byte("msg"), []byte("short"))
	assert.True(t, errors.ErrInput.Is(err))

	bad := make([]byte, SignatureSize)
	_, err = r.Recover([]byte("msg"), bad)
	assert.True(t, errors.ErrUnauthorized.Is(err))
}
