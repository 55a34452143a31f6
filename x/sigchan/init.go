package sigchan

import (
	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/errors"
	"github.com/iov-one/paygate/gconf"
)

// Initializer stores the extension configuration. Without a genesis
// configuration the funding duration is not limited.
type Initializer struct{}

var _ paygate.Initializer = Initializer{}

func (Initializer) FromGenesis(opts paygate.Options, db paygate.KVStore) error {
	var conf Configuration
	switch err := gconf.InitConfig(db, opts, packageName, &conf); {
	case err == nil:
		return nil
	case errors.ErrNotFound.Is(err):
		return gconf.Save(db, packageName, &Configuration{})
	default:
		return errors.Wrap(err, "init config")
	}
}
