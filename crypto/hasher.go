package crypto

import (
	"crypto/sha256"

	"github.com/iov-one/paygate/errors"
	"golang.org/x/crypto/sha3"
)

// Hasher is a cryptographic hash function used to build and verify hash
// chains.
type Hasher interface {
	// Name returns the name the hasher is registered under.
	Name() string
	// Size returns the length of a digest in bytes.
	Size() int
	// Sum returns the digest of given data.
	Sum(data []byte) []byte
}

const (
	// SHA256Name is the name of the SHA-256 hasher.
	SHA256Name = "sha256"
	// SHA3Name is the name of the SHA3-256 hasher.
	SHA3Name = "sha3-256"
)

var (
	// SHA256 is the default hasher.
	SHA256 Hasher = sha256Hasher{}
	// SHA3 is the SHA3-256 (FIPS 202) hasher.
	SHA3 Hasher = sha3Hasher{}
)

type sha256Hasher struct{}

func (sha256Hasher) Name() string { return SHA256Name }
func (sha256Hasher) Size() int    { return sha256.Size }

func (sha256Hasher) Sum(data []byte) []byte {
	d := sha256.Sum256(data)
	return d[:]
}

type sha3Hasher struct{}

func (sha3Hasher) Name() string { return SHA3Name }
func (sha3Hasher) Size() int    { return 32 }

func (sha3Hasher) Sum(data []byte) []byte {
	d := sha3.Sum256(data)
	return d[:]
}

// HasherByName returns a hasher registered under given name. An empty name
// selects the default SHA256 hasher.
func HasherByName(name string) (Hasher, error) {
	switch name {
	case "", SHA256Name:
		return SHA256, nil
	case SHA3Name:
		return SHA3, nil
	}
	return nil, errors.Wrapf(errors.ErrInput, "unknown hasher %q", name)
}
