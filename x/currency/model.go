package currency

import (
	"regexp"

	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/codec"
	"github.com/iov-one/paygate/coin"
	"github.com/iov-one/paygate/errors"
	"github.com/iov-one/paygate/orm"
)

var isTokenName = regexp.MustCompile(`^[A-Za-z0-9 \-_:]{3,32}$`).MatchString

// TokenInfo describes a registered token. The ticker is the key.
type TokenInfo struct {
	Name string `json:"name"`
}

var _ orm.CloneableData = (*TokenInfo)(nil)

// NewTokenInfo returns a new instance of Token Info, as represented by orm
// object.
func NewTokenInfo(ticker, name string) orm.Object {
	return orm.NewSimpleObj([]byte(ticker), &TokenInfo{
		Name: name,
	})
}

func (t *TokenInfo) Marshal() ([]byte, error) {
	return codec.Marshal(t)
}

func (t *TokenInfo) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, t)
}

func (t *TokenInfo) Validate() error {
	if !isTokenName(t.Name) {
		return errors.Wrapf(errors.ErrModel, "invalid token name %q", t.Name)
	}
	return nil
}

func (t *TokenInfo) Copy() orm.CloneableData {
	return &TokenInfo{
		Name: t.Name,
	}
}

// TokenInfoBucket stores TokenInfo instances, using ticker name (currency
// symbol) as the key.
type TokenInfoBucket struct {
	orm.Bucket
}

func NewTokenInfoBucket() *TokenInfoBucket {
	return &TokenInfoBucket{
		Bucket: orm.NewBucket("tokeninfo", orm.NewSimpleObj(nil, &TokenInfo{})),
	}
}

// Get returns the token registered under given ticker or nil.
func (b *TokenInfoBucket) Get(db paygate.ReadOnlyKVStore, ticker string) (orm.Object, error) {
	return b.Bucket.Get(db, []byte(ticker))
}

// Save stores the token, making sure the key is a valid ticker.
func (b *TokenInfoBucket) Save(db paygate.KVStore, obj orm.Object) error {
	if _, ok := obj.Value().(*TokenInfo); !ok {
		return errors.WithType(errors.ErrModel, obj.Value())
	}
	if n := string(obj.Key()); !coin.IsCC(n) {
		return errors.Wrapf(errors.ErrCurrency, "invalid ticker %q", n)
	}
	return b.Bucket.Save(db, obj)
}

// IsRegistered returns true if the ticker is a known token.
func (b *TokenInfoBucket) IsRegistered(db paygate.ReadOnlyKVStore, ticker string) (bool, error) {
	obj, err := b.Get(db, ticker)
	if err != nil {
		return false, err
	}
	return obj != nil && obj.Value() != nil, nil
}
