package sigchan

import (
	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/codec"
	"github.com/iov-one/paygate/coin"
	"github.com/iov-one/paygate/errors"
	"github.com/iov-one/paygate/orm"
	"github.com/iov-one/paygate/x/asset"
)

// Channel is the state of a signature channel. A channel with a zero
// amount is settled and can be funded again.
type Channel struct {
	Payer        paygate.Address  `json:"payer"`
	Payee        paygate.Address  `json:"payee"`
	Amount       coin.Coin        `json:"amount"`
	Expiration   paygate.UnixTime `json:"expiration"`
	ReclaimAt    paygate.UnixTime `json:"reclaim_at"`
	SessionID    int64            `json:"session_id"`
	LastSequence int64            `json:"last_sequence"`
	Kind         asset.Kind       `json:"kind"`
}

var _ orm.Model = (*Channel)(nil)

func (c *Channel) Marshal() ([]byte, error) {
	return codec.Marshal(c)
}

func (c *Channel) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, c)
}

func (c *Channel) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Payer", c.Payer.Validate())
	errs = errors.AppendField(errs, "Payee", c.Payee.Validate())
	if !c.Amount.IsNonNegative() {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	}
	if c.Expiration >= c.ReclaimAt {
		errs = errors.AppendField(errs, "ReclaimAt", errors.ErrState)
	}
	if c.SessionID < 1 {
		errs = errors.AppendField(errs, "SessionID", errors.ErrState)
	}
	if c.LastSequence < 0 {
		errs = errors.AppendField(errs, "LastSequence", errors.ErrState)
	}
	errs = errors.AppendField(errs, "Kind", c.Kind.Validate())
	return errs
}

func (c *Channel) Copy() orm.CloneableData {
	cpy := *c
	cpy.Payer = append(paygate.Address(nil), c.Payer...)
	cpy.Payee = append(paygate.Address(nil), c.Payee...)
	return &cpy
}

// IsLive returns true while the channel holds a deposit.
func (c *Channel) IsLive() bool {
	return c.Amount.IsPositive()
}

// tombstone empties the channel. Counters are kept.
func (c *Channel) tombstone() {
	c.Amount = coin.Coin{Ticker: c.Amount.Ticker}
}

// ChannelKey returns the key of the channel between payer and payee using
// given asset.
func ChannelKey(payer, payee paygate.Address, ticker string) []byte {
	key := make([]byte, 0, len(payer)+len(payee)+len(ticker))
	key = append(key, payer...)
	key = append(key, payee...)
	return append(key, ticker...)
}

// ChannelAddress returns the account that holds the deposit of the
// channel with given key.
func ChannelAddress(key []byte) paygate.Address {
	return paygate.NewCondition(packageName, "channel", key).Address()
}

// EngineAddress identifies this engine. It is the spender token owners
// must allow to pull deposits and it is part of every signed voucher.
var EngineAddress = paygate.NewCondition(packageName, "engine", []byte(packageName)).Address()

// ChannelBucket stores channels under ChannelKey, including settled ones.
type ChannelBucket struct {
	orm.ModelBucket
}

func NewChannelBucket() *ChannelBucket {
	return &ChannelBucket{
		ModelBucket: orm.NewModelBucket("sigchan", &Channel{}),
	}
}

// Find returns the channel stored under given key, live or settled. Nil
// is returned if the channel was never funded.
func (b *ChannelBucket) Find(db paygate.ReadOnlyKVStore, key []byte) (*Channel, error) {
	var ch Channel
	switch err := b.One(db, key, &ch); {
	case err == nil:
		return &ch, nil
	case errors.ErrNotFound.Is(err):
		return nil, nil
	default:
		return nil, err
	}
}

// Live returns the channel stored under given key if it holds a deposit.
func (b *ChannelBucket) Live(db paygate.ReadOnlyKVStore, key []byte) (*Channel, error) {
	ch, err := b.Find(db, key)
	if err != nil {
		return nil, err
	}
	if ch == nil || !ch.IsLive() {
		return nil, errors.Wrap(errors.ErrNotFound, "channel")
	}
	return ch, nil
}
