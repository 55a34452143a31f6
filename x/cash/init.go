package cash

import (
	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/coin"
	"github.com/iov-one/paygate/errors"
)

const optKey = "cash"

// GenesisAccount is used to parse the json from genesis file
// use paygate.Address, so address in hex, not base64
type GenesisAccount struct {
	Address paygate.Address `json:"address"`
	Coins   []coin.Coin     `json:"coins"`
}

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ paygate.Initializer = Initializer{}

// FromGenesis will parse initial account info from genesis
// and save it to the database
func (Initializer) FromGenesis(opts paygate.Options, kv paygate.KVStore) error {
	var accts []GenesisAccount
	if err := opts.ReadOptions(optKey, &accts); err != nil {
		return err
	}
	ctrl := NewController()
	for i, acct := range accts {
		if err := acct.Address.Validate(); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
		for _, c := range acct.Coins {
			if !c.IsPositive() {
				return errors.Wrapf(errors.ErrAmount, "account %d: non-positive %s", i, c)
			}
			if err := ctrl.IssueCoins(kv, acct.Address, c); err != nil {
				return errors.Wrapf(err, "account %d", i)
			}
		}
	}
	return nil
}
