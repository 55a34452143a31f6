package cash

import (
	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/codec"
	"github.com/iov-one/paygate/coin"
	"github.com/iov-one/paygate/errors"
)

const maxMemoSize int = 128

// SendMsg moves coins from the source wallet to the destination.
type SendMsg struct {
	Source      paygate.Address `json:"source"`
	Destination paygate.Address `json:"destination"`
	Amount      coin.Coin       `json:"amount"`
	Memo        string          `json:"memo"`
}

var _ paygate.Msg = (*SendMsg)(nil)

// Path returns the routing path for this message
func (SendMsg) Path() string {
	return "cash/send"
}

func (m *SendMsg) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *SendMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, m)
}

// Validate makes sure that this is sensible
func (m *SendMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Source", m.Source.Validate())
	errs = errors.AppendField(errs, "Destination", m.Destination.Validate())
	if !m.Amount.IsPositive() {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	} else {
		errs = errors.AppendField(errs, "Amount", m.Amount.Validate())
	}
	if len(m.Memo) > maxMemoSize {
		errs = errors.AppendField(errs, "Memo", errors.ErrInput)
	}
	return errs
}
