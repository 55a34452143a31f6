package asset

import (
	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/codec"
	"github.com/iov-one/paygate/coin"
	"github.com/iov-one/paygate/errors"
	"github.com/iov-one/paygate/orm"
)

// Allowance is the amount a spender may still pull from the owner wallet.
type Allowance struct {
	Amount coin.Coin `json:"amount"`
}

var _ orm.Model = (*Allowance)(nil)

func (a *Allowance) Marshal() ([]byte, error) {
	return codec.Marshal(a)
}

func (a *Allowance) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, a)
}

func (a *Allowance) Validate() error {
	if !a.Amount.IsPositive() {
		return errors.Field("Amount", errors.ErrAmount, "allowance must be positive")
	}
	return errors.Field("Amount", a.Amount.Validate(), "invalid amount")
}

func (a *Allowance) Copy() orm.CloneableData {
	cpy := *a
	return &cpy
}

// AllowanceBucket stores allowances under owner, spender and ticker.
type AllowanceBucket struct {
	orm.ModelBucket
}

func NewAllowanceBucket() *AllowanceBucket {
	return &AllowanceBucket{
		ModelBucket: orm.NewModelBucket("allowance", &Allowance{}),
	}
}

// AllowanceKey returns the key of an allowance. Keys of one owner share a
// common prefix.
func AllowanceKey(owner, spender paygate.Address, ticker string) []byte {
	key := make([]byte, 0, len(owner)+len(spender)+len(ticker))
	key = append(key, owner...)
	key = append(key, spender...)
	return append(key, ticker...)
}

// Allowance returns the amount the spender may pull. A missing allowance
// is zero.
func (b *AllowanceBucket) Allowance(db paygate.ReadOnlyKVStore, owner, spender paygate.Address, ticker string) (coin.Coin, error) {
	var a Allowance
	switch err := b.One(db, AllowanceKey(owner, spender, ticker), &a); {
	case err == nil:
		return a.Amount, nil
	case errors.ErrNotFound.Is(err):
		return coin.Coin{Ticker: ticker}, nil
	default:
		return coin.Coin{}, err
	}
}

// SetAllowance replaces the allowance. Setting a zero amount removes it.
func (b *AllowanceBucket) SetAllowance(db paygate.KVStore, owner, spender paygate.Address, amount coin.Coin) error {
	key := AllowanceKey(owner, spender, amount.Ticker)
	if amount.IsZero() {
		if err := b.Delete(db, key); err != nil && !errors.ErrNotFound.Is(err) {
			return err
		}
		return nil
	}
	return b.Put(db, key, &Allowance{Amount: amount})
}

// Nonce is the number of approvals consumed for an owner.
type Nonce struct {
	Value int64 `json:"value"`
}

var _ orm.Model = (*Nonce)(nil)

func (n *Nonce) Marshal() ([]byte, error) {
	return codec.Marshal(n)
}

func (n *Nonce) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, n)
}

func (n *Nonce) Validate() error {
	if n.Value < 0 {
		return errors.Field("Value", errors.ErrModel, "negative nonce")
	}
	return nil
}

func (n *Nonce) Copy() orm.CloneableData {
	return &Nonce{Value: n.Value}
}

// NonceBucket stores approval nonces under the owner and ticker.
type NonceBucket struct {
	orm.ModelBucket
}

func NewNonceBucket() *NonceBucket {
	return &NonceBucket{
		ModelBucket: orm.NewModelBucket("apnonce", &Nonce{}),
	}
}

func nonceKey(owner paygate.Address, ticker string) []byte {
	return append(append([]byte(nil), owner...), ticker...)
}

// Current returns the nonce the next approval of the owner must be signed
// with.
func (b *NonceBucket) Current(db paygate.ReadOnlyKVStore, owner paygate.Address, ticker string) (int64, error) {
	var n Nonce
	switch err := b.One(db, nonceKey(owner, ticker), &n); {
	case err == nil:
		return n.Value, nil
	case errors.ErrNotFound.Is(err):
		return 0, nil
	default:
		return 0, err
	}
}

// Bump increments the nonce of the owner, invalidating every approval
// signed with the previous value.
func (b *NonceBucket) Bump(db paygate.KVStore, owner paygate.Address, ticker string) error {
	cur, err := b.Current(db, owner, ticker)
	if err != nil {
		return err
	}
	return b.Put(db, nonceKey(owner, ticker), &Nonce{Value: cur + 1})
}
