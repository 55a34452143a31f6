package asset

import (
	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/coin"
	"github.com/iov-one/paygate/errors"
	"github.com/iov-one/paygate/gconf"
)

// GenesisAllowance is an allowance declared in the genesis file.
type GenesisAllowance struct {
	Owner   paygate.Address `json:"owner"`
	Spender paygate.Address `json:"spender"`
	Amount  coin.Coin       `json:"amount"`
}

// Initializer stores the asset configuration and the initial allowances.
type Initializer struct{}

var _ paygate.Initializer = Initializer{}

func (Initializer) FromGenesis(opts paygate.Options, db paygate.KVStore) error {
	if err := gconf.InitConfig(db, opts, packageName, &Configuration{}); err != nil {
		return errors.Wrap(err, "init config")
	}

	var allowances []GenesisAllowance
	if err := opts.ReadOptions("allowances", &allowances); err != nil {
		return err
	}
	b := NewAllowanceBucket()
	for i, a := range allowances {
		if err := a.Owner.Validate(); err != nil {
			return errors.Wrapf(err, "allowance %d owner", i)
		}
		if err := a.Spender.Validate(); err != nil {
			return errors.Wrapf(err, "allowance %d spender", i)
		}
		if err := b.SetAllowance(db, a.Owner, a.Spender, a.Amount); err != nil {
			return errors.Wrapf(err, "allowance %d", i)
		}
	}
	return nil
}
