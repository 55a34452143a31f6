package cash

import (
	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/codec"
	"github.com/iov-one/paygate/coin"
	"github.com/iov-one/paygate/errors"
	"github.com/iov-one/paygate/orm"
)

// BucketName is where we store the balances
const BucketName = "cash"

// Set is the content of a wallet: a normalized set of coins.
type Set struct {
	Coins coin.Coins `json:"coins"`
}

var _ orm.Model = (*Set)(nil)

func (s *Set) Marshal() ([]byte, error) {
	return codec.Marshal(s)
}

func (s *Set) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, s)
}

// Validate requires that all coins are in alphabetical order, positive and
// valid.
func (s *Set) Validate() error {
	if err := s.Coins.Validate(); err != nil {
		return errors.Field("Coins", err, "invalid coins")
	}
	if !s.Coins.IsNonNegative() {
		return errors.Field("Coins", errors.ErrAmount, "negative balance")
	}
	return nil
}

// Copy makes a new set with the same coins
func (s *Set) Copy() orm.CloneableData {
	return &Set{Coins: s.Coins.Clone()}
}

// NewBucket returns a bucket holding wallets under the owner address.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &Set{})
}

// loadSet returns the wallet content of given owner. A missing wallet is
// an empty one.
func loadSet(db paygate.ReadOnlyKVStore, b orm.ModelBucket, owner paygate.Address) (*Set, error) {
	var s Set
	switch err := b.One(db, owner, &s); {
	case err == nil:
		return &s, nil
	case errors.ErrNotFound.Is(err):
		return &Set{}, nil
	default:
		return nil, errors.Wrap(err, "cannot load wallet")
	}
}

// saveSet stores the wallet. An empty wallet is removed.
func saveSet(db paygate.KVStore, b orm.ModelBucket, owner paygate.Address, s *Set) error {
	if s.Coins.IsEmpty() {
		err := b.Delete(db, owner)
		if errors.ErrNotFound.Is(err) {
			return nil
		}
		return err
	}
	return b.Put(db, owner, s)
}
