package asset

import (
	"github.com/iov-one/paygate/codec"
	"github.com/iov-one/paygate/coin"
	"github.com/iov-one/paygate/errors"
	"github.com/iov-one/paygate/gconf"
)

const packageName = "asset"

// Configuration declares which ticker is the native asset.
type Configuration struct {
	NativeTicker string `json:"native_ticker"`
}

func (c *Configuration) Marshal() ([]byte, error) {
	return codec.Marshal(c)
}

func (c *Configuration) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, c)
}

func (c *Configuration) Validate() error {
	if !coin.IsCC(c.NativeTicker) {
		return errors.Field("NativeTicker", errors.ErrCurrency, "invalid ticker %q", c.NativeTicker)
	}
	return nil
}

// LoadConfiguration returns the configuration stored in the database.
func LoadConfiguration(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, packageName, &conf); err != nil {
		return nil, errors.Wrap(err, "load asset configuration")
	}
	return &conf, nil
}
