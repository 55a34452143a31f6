package currency

import (
	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/errors"
)

// Initializer fulfils the Initializer interface to load the registered
// tokens from the genesis file.
type Initializer struct{}

var _ paygate.Initializer = (*Initializer)(nil)

// FromGenesis will parse initial tokens info from genesis and save it to
// the database.
func (*Initializer) FromGenesis(opts paygate.Options, kv paygate.KVStore) error {
	var tokens []struct {
		Ticker string `json:"ticker"`
		Name   string `json:"name"`
	}
	if err := opts.ReadOptions("currencies", &tokens); err != nil {
		return err
	}

	bucket := NewTokenInfoBucket()
	for _, t := range tokens {
		switch ok, err := bucket.IsRegistered(kv, t.Ticker); {
		case err != nil:
			return err
		case ok:
			return errors.Wrapf(errors.ErrDuplicate, "ticker %s", t.Ticker)
		}
		obj := NewTokenInfo(t.Ticker, t.Name)
		if err := bucket.Save(kv, obj); err != nil {
			return err
		}
	}
	return nil
}
