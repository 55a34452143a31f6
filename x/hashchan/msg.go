package hashchan

import (
	"math"

	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/codec"
	"github.com/iov-one/paygate/coin"
	"github.com/iov-one/paygate/crypto"
	"github.com/iov-one/paygate/errors"
)

const (
	pathOpenMsg    = "hashchan/open"
	pathRedeemMsg  = "hashchan/redeem"
	pathReclaimMsg = "hashchan/reclaim"
)

// OpenMsg funds a new channel. Value is the native value attached to the
// message and must be zero for tokens.
type OpenMsg struct {
	Payer            paygate.Address      `json:"payer"`
	Payee            paygate.Address      `json:"payee"`
	Anchor           []byte               `json:"anchor"`
	Amount           coin.Coin            `json:"amount"`
	ChainLength      int64                `json:"chain_length"`
	PayeeUnlockDelay paygate.UnixDuration `json:"payee_unlock_delay"`
	PayerUnlockDelay paygate.UnixDuration `json:"payer_unlock_delay"`
	Value            coin.Coin            `json:"value"`
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
	var errs error
	errs = errors.AppendField(errs, "Payer", m.Payer.Validate())
	errs = errors.AppendField(errs, "Payee", validatePayee(m.Payee))
	if len(m.Anchor) == 0 {
		errs = errors.AppendField(errs, "Anchor", errors.ErrEmpty)
	}
	if !m.Amount.IsPositive() {
		errs = errors.AppendField(errs, "Amount", errors.Wrap(errors.ErrAmount, "deposit must be positive"))
	} else {
		errs = errors.AppendField(errs, "Amount", m.Amount.Validate())
	}
	if m.ChainLength < 1 || m.ChainLength > crypto.MaxChainLength {
		errs = errors.AppendField(errs, "ChainLength",
			errors.Wrapf(errors.ErrInput, "must be in [1, %d]", crypto.MaxChainLength))
	}
	errs = errors.AppendField(errs, "PayeeUnlockDelay", validateDelay(m.PayeeUnlockDelay))
	errs = errors.AppendField(errs, "PayerUnlockDelay", validateDelay(m.PayerUnlockDelay))
	if errs == nil && !payerWaitsLonger(m.PayeeUnlockDelay, m.PayerUnlockDelay) {
		errs = errors.Field("PayerUnlockDelay", errors.ErrInput,
			"must be at least 110%% of the payee delay %s", m.PayeeUnlockDelay)
	}
	if !m.Value.IsNonNegative() {
		errs = errors.AppendField(errs, "Value", errors.ErrAmount)
	}
	return errs
}

func validatePayee(a paygate.Address) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if a.IsZero() {
		return errors.Wrap(errors.ErrEmpty, "zero address")
	}
	return nil
}

// maxDelay keeps the delay ratio computation within int64.
const maxDelay = math.MaxInt64 / 11

func validateDelay(d paygate.UnixDuration) error {
	if d < 0 || d > maxDelay {
		return errors.Wrapf(errors.ErrInput, "delay %d out of range", int64(d))
	}
	return nil
}

// payerWaitsLonger returns true if the payer delay is at least
// ceil(1.1 * payee delay).
func payerWaitsLonger(payee, payer paygate.UnixDuration) bool {
	return 11*int64(payee) <= 10*int64(payer)
}

// RedeemMsg settles the channel. Preimage hashed Ticks times must result
// in the channel anchor.
type RedeemMsg struct {
	Payer    paygate.Address `json:"payer"`
	Payee    paygate.Address `json:"payee"`
	Ticker   string          `json:"ticker"`
	Preimage []byte          `json:"preimage"`
	Ticks    int64           `json:"ticks"`
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
	errs = errors.AppendField(errs, "Ticker", validateTicker(m.Ticker))
	if len(m.Preimage) == 0 {
		errs = errors.AppendField(errs, "Preimage", errors.ErrEmpty)
	}
	if m.Ticks < 0 {
		errs = errors.AppendField(errs, "Ticks", errors.ErrInput)
	}
	return errs
}

// ReclaimMsg returns the whole deposit to the payer.
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
	errs = errors.AppendField(errs, "Ticker", validateTicker(m.Ticker))
	return errs
}

func validateTicker(ticker string) error {
	if !coin.IsCC(ticker) {
		return errors.Wrapf(errors.ErrCurrency, "invalid ticker %q", ticker)
	}
	return nil
}
