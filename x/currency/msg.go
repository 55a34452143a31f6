package currency

import (
	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/codec"
	"github.com/iov-one/paygate/coin"
	"github.com/iov-one/paygate/errors"
)

// CreateMsg registers a new token.
type CreateMsg struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
}

var _ paygate.Msg = (*CreateMsg)(nil)

func (CreateMsg) Path() string {
	return "currency/create"
}

func (m *CreateMsg) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *CreateMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, m)
}

func (m *CreateMsg) Validate() error {
	if !coin.IsCC(m.Ticker) {
		return errors.Field("Ticker", errors.ErrCurrency, "invalid ticker %q", m.Ticker)
	}
	if !isTokenName(m.Name) {
		return errors.Field("Name", errors.ErrInput, "invalid token name %q", m.Name)
	}
	return nil
}
