package hashchan

import (
	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/errors"
	"github.com/iov-one/paygate/gconf"
)

// Initializer stores the extension configuration. The default
// configuration is used when the genesis does not provide one.
type Initializer struct{}

var _ paygate.Initializer = Initializer{}

func (Initializer) FromGenesis(opts paygate.Options, db paygate.KVStore) error {
	conf := DefaultConfiguration()
	switch err := gconf.InitConfig(db, opts, packageName, &conf); {
	case err == nil:
		return nil
	case errors.ErrNotFound.Is(err):
		conf = DefaultConfiguration()
		return gconf.Save(db, packageName, &conf)
	default:
		return errors.Wrap(err, "init config")
	}
}
