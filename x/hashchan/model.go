package hashchan

import (
	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/codec"
	"github.com/iov-one/paygate/coin"
	"github.com/iov-one/paygate/crypto"
	"github.com/iov-one/paygate/errors"
	"github.com/iov-one/paygate/orm"
	"github.com/iov-one/paygate/x/asset"
)

// Channel is a funded hash chain channel. A channel exists only while it
// holds a deposit.
type Channel struct {
	Payer       paygate.Address  `json:"payer"`
	Payee       paygate.Address  `json:"payee"`
	Anchor      []byte           `json:"anchor"`
	Amount      coin.Coin        `json:"amount"`
	ChainLength int64            `json:"chain_length"`
	PayeeUnlock paygate.UnixTime `json:"payee_unlock"`
	PayerUnlock paygate.UnixTime `json:"payer_unlock"`
	Kind        asset.Kind       `json:"kind"`
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
	if len(c.Anchor) == 0 {
		errs = errors.AppendField(errs, "Anchor", errors.ErrEmpty)
	}
	if !c.Amount.IsPositive() {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	}
	if c.ChainLength < 1 || c.ChainLength > crypto.MaxChainLength {
		errs = errors.AppendField(errs, "ChainLength", errors.ErrInput)
	}
	if c.PayerUnlock < c.PayeeUnlock {
		errs = errors.AppendField(errs, "PayerUnlock", errors.ErrState)
	}
	errs = errors.AppendField(errs, "Kind", c.Kind.Validate())
	return errs
}

func (c *Channel) Copy() orm.CloneableData {
	cpy := *c
	cpy.Payer = append(paygate.Address(nil), c.Payer...)
	cpy.Payee = append(paygate.Address(nil), c.Payee...)
	cpy.Anchor = append([]byte(nil), c.Anchor...)
	return &cpy
}

// ChannelKey returns the key of the channel between payer and payee using
// given asset. Channels of one payer share a common prefix.
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

// EngineAddress is the spender that token owners must allow to pull
// deposits.
var EngineAddress = paygate.NewCondition(packageName, "engine", []byte(packageName)).Address()

// ChannelBucket stores channels under ChannelKey.
type ChannelBucket struct {
	orm.ModelBucket
}

func NewChannelBucket() *ChannelBucket {
	return &ChannelBucket{
		ModelBucket: orm.NewModelBucket("hashchan", &Channel{}),
	}
}

// Live returns the funded channel stored under given key.
func (b *ChannelBucket) Live(db paygate.ReadOnlyKVStore, key []byte) (*Channel, error) {
	var ch Channel
	if err := b.One(db, key, &ch); err != nil {
		return nil, errors.Wrap(err, "channel")
	}
	return &ch, nil
}
