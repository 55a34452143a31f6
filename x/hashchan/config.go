package hashchan

import (
	"github.com/iov-one/paygate/codec"
	"github.com/iov-one/paygate/crypto"
	"github.com/iov-one/paygate/errors"
	"github.com/iov-one/paygate/gconf"
)

const packageName = "hashchan"

// Configuration selects the hash function of all chains and limits the
// verification cost of a redeem.
type Configuration struct {
	Hash           string `json:"hash"`
	MaxChainLength int64  `json:"max_chain_length"`
}

// DefaultConfiguration is used when the genesis does not configure the
// extension.
func DefaultConfiguration() Configuration {
	return Configuration{
		Hash:           crypto.SHA256Name,
		MaxChainLength: crypto.MaxChainLength,
	}
}

func (c *Configuration) Marshal() ([]byte, error) {
	return codec.Marshal(c)
}

func (c *Configuration) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, c)
}

func (c *Configuration) Validate() error {
	var errs error
	if _, err := crypto.HasherByName(c.Hash); err != nil {
		errs = errors.AppendField(errs, "Hash", err)
	}
	if c.MaxChainLength < 1 || c.MaxChainLength > crypto.MaxChainLength {
		errs = errors.AppendField(errs, "MaxChainLength",
			errors.Wrapf(errors.ErrInput, "must be in [1, %d]", crypto.MaxChainLength))
	}
	return errs
}

// Hasher returns the configured hash function.
func (c *Configuration) Hasher() (crypto.Hasher, error) {
	return crypto.HasherByName(c.Hash)
}

func loadConfiguration(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, packageName, &conf); err != nil {
		return nil, errors.Wrap(err, "load hashchan configuration")
	}
	return &conf, nil
}
