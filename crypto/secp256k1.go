package crypto

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcec"
	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/errors"
)

// ExtensionName is used for the conditions we get from signatures
const ExtensionName = "sigs"

// SignatureSize is the length of a recoverable compact signature.
const SignatureSize = 65

// Signer produces signatures that allow to recover the signer address.
// No serializing to support hardware devices as well.
type Signer interface {
	Sign(message []byte) ([]byte, error)
	Address() paygate.Address
}

// Recoverer returns the address of the key that signed given message.
type Recoverer interface {
	Recover(message, signature []byte) (paygate.Address, error)
}

// Secp256k1Key is a private key on the secp256k1 curve.
type Secp256k1Key struct {
	priv *btcec.PrivateKey
}

var _ Signer = (*Secp256k1Key)(nil)

// GenSecp256k1Key creates a new random private key.
func GenSecp256k1Key() (*Secp256k1Key, error) {
	priv, err := btcec.NewPrivateKey(btcec.S256())
	if err != nil {
		return nil, errors.Wrap(errors.ErrHuman, err.Error())
	}
	return &Secp256k1Key{priv: priv}, nil
}

// Secp256k1KeyFromSeed deterministically derives a private key from the
// given seed. Use only for tests and tooling.
func Secp256k1KeyFromSeed(seed []byte) *Secp256k1Key {
	d := sha256.Sum256(seed)
	priv, _ := btcec.PrivKeyFromBytes(btcec.S256(), d[:])
	return &Secp256k1Key{priv: priv}
}

// Sign returns a 65 byte recoverable signature of the message digest.
func (k *Secp256k1Key) Sign(message []byte) ([]byte, error) {
	digest := sha256.Sum256(message)
	sig, err := btcec.SignCompact(btcec.S256(), k.priv, digest[:], true)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return sig, nil
}

// PublicKey returns the compressed public key.
func (k *Secp256k1Key) PublicKey() []byte {
	return k.priv.PubKey().SerializeCompressed()
}

// Condition returns the condition that signatures of this key satisfy.
func (k *Secp256k1Key) Condition() paygate.Condition {
	return Secp256k1Condition(k.PublicKey())
}

// Address returns the address of the key condition.
func (k *Secp256k1Key) Address() paygate.Address {
	return k.Condition().Address()
}

// Secp256k1Condition encodes a compressed public key into a condition.
func Secp256k1Condition(compressed []byte) paygate.Condition {
	return paygate.NewCondition(ExtensionName, "secp256k1", compressed)
}

// Secp256k1Recoverer recovers signers of compact signatures.
type Secp256k1Recoverer struct{}

var _ Recoverer = Secp256k1Recoverer{}

// Recover returns the address of the key that produced the signature of
// given message.
func (Secp256k1Recoverer) Recover(message, signature []byte) (paygate.Address, error) {
	if len(signature) != SignatureSize {
		return nil, errors.Wrapf(errors.ErrInput, "signature must be %d bytes", SignatureSize)
	}
	digest := sha256.Sum256(message)
	pub, _, err := btcec.RecoverCompact(btcec.S256(), signature, digest[:])
	if err != nil {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "cannot recover signer: %s", err)
	}
	return Secp256k1Condition(pub.SerializeCompressed()).Address(), nil
}
