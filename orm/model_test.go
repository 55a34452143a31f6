package orm

import (
	"github.com/iov-one/paygate/codec"
	"github.com/iov-one/paygate/errors"
)

// Counter is a minimal model used in tests.
type Counter struct {
	Count int64
}

var _ Model = (*Counter)(nil)

func (c *Counter) Marshal() ([]byte, error) {
	return codec.Marshal(*c)
}

func (c *Counter) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, c)
}

func (c *Counter) Validate() error {
	if c.Count < 0 {
		return errors.Wrap(errors.ErrModel, "negative count")
	}
	return nil
}

func (c *Counter) Copy() CloneableData {
	return &Counter{Count: c.Count}
}

// Label is a different model, used to test type mismatches.
type Label struct {
	Name string
}

var _ Model = (*Label)(nil)

func (l *Label) Marshal() ([]byte, error)   { return codec.Marshal(*l) }
func (l *Label) Unmarshal(raw []byte) error { return codec.Unmarshal(raw, l) }
func (l *Label) Validate() error            { return nil }
func (l *Label) Copy() CloneableData        { return &Label{Name: l.Name} }
