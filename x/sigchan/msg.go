package sigchan

import (
	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/codec"
	"github.com/iov-one/paygate/coin"
	"github.com/iov-one/paygate/crypto"
	"github.com/iov-one/paygate/errors"
)

const (
	pathOpenMsg             = "sigchan/open"
	pathOpenWithApprovalMsg = "sigchan/open_with_approval"
	pathRedeemMsg           = "sigchan/redeem"
	pathReclaimMsg          = "sigchan/reclaim"
)

// OpenMsg funds a channel. Value is the native value attached to the
// message and must be zero for tokens.
type OpenMsg struct {
	Payer        paygate.Address      `json:"payer"`
	Payee        paygate.Address      `json:"payee"`
	Amount       coin.Coin            `json:"amount"`
	Duration     paygate.UnixDuration `json:"duration"`
	ReclaimDelay paygate.UnixDuration `json:"reclaim_delay"`
	Value        coin.Coin            `json:"value"`
}

var _ paygate.Msg = (*OpenMsg)(nil)

func (OpenMsg) Path() string {
	return pathOpenMsg
}

func (m *OpenMsg) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *OpenMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, m)
}

func (m *OpenMsg) Validate() error {
	errs := validateFunding(m.Payer, m.Payee, m.Amount, m.Duration, m.ReclaimDelay)
	if !m.Value.IsNonNegative() {
		errs = errors.AppendField(errs, "Value", errors.ErrAmount)
	}
	return errs
}

// OpenWithApprovalMsg funds a token channel using an approval signed by
// the payer instead of an existing allowance. It can be relayed by anyone.
type OpenWithApprovalMsg struct {
	Payer             paygate.Address      `json:"payer"`
	Payee             paygate.Address      `json:"payee"`
	Amount            coin.Coin            `json:"amount"`
	Duration          paygate.UnixDuration `json:"duration"`
	ReclaimDelay      paygate.UnixDuration `json:"reclaim_delay"`
	ApprovalExpiry    paygate.UnixTime     `json:"approval_expiry"`
	ApprovalSignature []byte               `json:"approval_signature"`
}

var _ paygate.Msg = (*OpenWithApprovalMsg)(nil)

func (OpenWithApprovalMsg) Path() string {
	return pathOpenWithApprovalMsg
}

func (m *OpenWithApprovalMsg) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *OpenWithApprovalMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, m)
}

func (m *OpenWithApprovalMsg) Validate() error {
	errs := validateFunding(m.Payer, m.Payee, m.Amount, m.Duration, m.ReclaimDelay)
	errs = errors.AppendField(errs, "ApprovalExpiry", m.ApprovalExpiry.Validate())
	if len(m.ApprovalSignature) != crypto.SignatureSize {
		errs = errors.AppendField(errs, "ApprovalSignature",
			errors.Wrapf(errors.ErrInput, "must be %d bytes", crypto.SignatureSize))
	}
	return errs
}

func validateFunding(payer, payee paygate.Address, amount coin.Coin, duration, reclaimDelay paygate.UnixDuration) error {
	var errs error
	errs = errors.AppendField(errs, "Payer", payer.Validate())
	if payee.IsZero() {
		errs = errors.AppendField(errs, "Payee", errors.Wrap(errors.ErrEmpty, "zero address"))
	} else {
		errs = errors.AppendField(errs, "Payee", payee.Validate())
	}
	if !amount.IsPositive() {
		errs = errors.AppendField(errs, "Amount", errors.Wrap(errors.ErrAmount, "deposit must be positive"))
	} else {
		errs = errors.AppendField(errs, "Amount", amount.Validate())
	}
	if duration < 0 {
		errs = errors.AppendField(errs, "Duration", errors.ErrInput)
	}
	if reclaimDelay <= duration {
		errs = errors.AppendField(errs, "ReclaimDelay",
			errors.Wrapf(errors.ErrInput, "must be longer than the duration %s", duration))
	}
	return errs
}

// RedeemMsg settles the channel using a voucher signed by the payer.
type RedeemMsg struct {
	Payer     paygate.Address `json:"payer"`
	Payee     paygate.Address `json:"payee"`
	Amount    coin.Coin       `json:"amount"`
	Sequence  int64           `json:"sequence"`
	Signature []byte          `json:"signature"`
}

var _ paygate.Msg = (*RedeemMsg)(nil)

func (RedeemMsg) Path() string {
	return pathRedeemMsg
}

func (m *RedeemMsg) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *RedeemMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, m)
}

func (m *RedeemMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Payer", m.Payer.Validate())
	errs = errors.AppendField(errs, "Payee", m.Payee.Validate())
	if !m.Amount.IsPositive() {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	} else {
		errs = errors.AppendField(errs, "Amount", m.Amount.Validate())
	}
	if m.Sequence < 1 {
		errs = errors.AppendField(errs, "Sequence", errors.ErrInput)
	}
	if len(m.Signature) == 0 {
		errs = errors.AppendField(errs, "Signature", errors.ErrEmpty)
	}
	return errs
}

// ReclaimMsg returns the remaining deposit to the payer.
type ReclaimMsg struct {
	Payer  paygate.Address `json:"payer"`
	Payee  paygate.Address `json:"payee"`
	Ticker string          `json:"ticker"`
}

var _ paygate.Msg = (*ReclaimMsg)(nil)

func (ReclaimMsg) Path() string {
	return pathReclaimMsg
}

func (m *ReclaimMsg) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *ReclaimMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, m)
}

func (m *ReclaimMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Payer", m.Payer.Validate())
	errs = errors.AppendField(errs, "Payee", m.Payee.Validate())
	if !coin.IsCC(m.Ticker) {
		errs = errors.AppendField(errs, "Ticker", errors.Wrapf(errors.ErrCurrency, "invalid ticker %q", m.Ticker))
	}
	return errs
}
