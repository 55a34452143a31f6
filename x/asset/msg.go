package asset

import (
	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/codec"
	"github.com/iov-one/paygate/coin"
	"github.com/iov-one/paygate/errors"
)

// ApproveMsg sets the amount of a token the spender may pull from the
// owner wallet. A zero amount revokes the allowance.
type ApproveMsg struct {
	Owner   paygate.Address `json:"owner"`
	Spender paygate.Address `json:"spender"`
	Amount  coin.Coin       `json:"amount"`
}

var _ paygate.Msg = (*ApproveMsg)(nil)

func (ApproveMsg) Path() string {
	return "asset/approve"
}

func (m *ApproveMsg) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *ApproveMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, m)
}

func (m *ApproveMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Owner", m.Owner.Validate())
	errs = errors.AppendField(errs, "Spender", m.Spender.Validate())
	if !m.Amount.IsNonNegative() {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	} else if !coin.IsCC(m.Amount.Ticker) {
		errs = errors.AppendField(errs, "Amount", errors.ErrCurrency)
	} else {
		errs = errors.AppendField(errs, "Amount", m.Amount.Validate())
	}
	return errs
}
