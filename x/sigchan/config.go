package sigchan

import (
	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/codec"
	"github.com/iov-one/paygate/errors"
	"github.com/iov-one/paygate/gconf"
)

const packageName = "sigchan"

// Configuration limits the lifetime of a funding. A zero MaxDuration does
// not limit it.
type Configuration struct {
	MaxDuration paygate.UnixDuration `json:"max_duration"`
}

func (c *Configuration) Marshal() ([]byte, error) {
	return codec.Marshal(c)
}

func (c *Configuration) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, c)
}

func (c *Configuration) Validate() error {
	if c.MaxDuration < 0 {
		return errors.Field("MaxDuration", errors.ErrInput, "must not be negative")
	}
	return nil
}

func loadConfiguration(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, packageName, &conf); err != nil {
		return nil, errors.Wrap(err, "load sigchan configuration")
	}
	return &conf, nil
}
