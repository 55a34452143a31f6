package app

import (
	"encoding/json"
	"os"

	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/errors"
)

// Genesis is the initial state of a ledger.
type Genesis struct {
	ChainID  string          `json:"chain_id"`
	AppState paygate.Options `json:"app_state"`
}

// LoadGenesis reads a genesis file.
func LoadGenesis(filePath string) (Genesis, error) {
	var gen Genesis
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return gen, errors.Wrapf(errors.ErrInput, "loading genesis file: %s", err)
	}
	if err := json.Unmarshal(raw, &gen); err != nil {
		return gen, errors.Wrapf(errors.ErrInput, "unmarshaling genesis file: %s", err)
	}
	return gen, nil
}

// ChainInitializers lets you initialize many extensions with one function.
func ChainInitializers(inits ...paygate.Initializer) paygate.Initializer {
	return chainInitializers(inits)
}

type chainInitializers []paygate.Initializer

// FromGenesis passes the options to all initializers in order, aborting
// at the first error.
func (c chainInitializers) FromGenesis(opts paygate.Options, kv paygate.KVStore) error {
	for _, i := range c {
		if err := i.FromGenesis(opts, kv); err != nil {
			return err
		}
	}
	return nil
}
