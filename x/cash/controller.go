package cash

import (
	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/coin"
	"github.com/iov-one/paygate/errors"
	"github.com/iov-one/paygate/orm"
)

// Controller moves coins between wallets.
type Controller interface {
	// Balance returns all coins held by the owner.
	Balance(db paygate.ReadOnlyKVStore, owner paygate.Address) (coin.Coins, error)

	// MoveCoins moves the given amount from src to dest.
	// If src doesn't exist, or doesn't have sufficient
	// coins, it fails.
	MoveCoins(db paygate.KVStore, src, dest paygate.Address, amount coin.Coin) error

	// IssueCoins adds the given amount of coins to the destination
	// address. Fails if it overflows the wallet.
	IssueCoins(db paygate.KVStore, dest paygate.Address, amount coin.Coin) error
}

// BaseController is the wallet controller backed by the cash bucket.
type BaseController struct {
	bucket orm.ModelBucket
}

var _ Controller = BaseController{}

// NewController returns a controller using the default wallet bucket.
func NewController() BaseController {
	return BaseController{bucket: NewBucket()}
}

func (c BaseController) Balance(db paygate.ReadOnlyKVStore, owner paygate.Address) (coin.Coins, error) {
	s, err := loadSet(db, c.bucket, owner)
	if err != nil {
		return nil, err
	}
	return s.Coins, nil
}

func (c BaseController) MoveCoins(db paygate.KVStore, src, dest paygate.Address, amount coin.Coin) error {
	if !amount.IsPositive() {
		return errors.Wrapf(errors.ErrAmount, "non-positive amount %s", amount)
	}
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}

	sender, err := loadSet(db, c.bucket, src)
	if err != nil {
		return err
	}
	if !sender.Coins.Contains(amount) {
		return errors.Wrapf(errors.ErrInsufficientAmount, "%s has %s", src, sender.Coins.Balance(amount.Ticker))
	}
	if sender.Coins, err = sender.Coins.Subtract(amount); err != nil {
		return err
	}
	if err := saveSet(db, c.bucket, src, sender); err != nil {
		return errors.Wrap(err, "cannot save sender")
	}

	// Recipient is loaded after the sender is saved, so that moving coins
	// to self is a no-op.
	recipient, err := loadSet(db, c.bucket, dest)
	if err != nil {
		return err
	}
	if recipient.Coins, err = recipient.Coins.Add(amount); err != nil {
		return err
	}
	return errors.Wrap(saveSet(db, c.bucket, dest, recipient), "cannot save recipient")
}

// IssueCoins adds the amount to the destination wallet.
//
// Note the amount may also be negative, as long as the resulting balance
// is not.
func (c BaseController) IssueCoins(db paygate.KVStore, dest paygate.Address, amount coin.Coin) error {
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	recipient, err := loadSet(db, c.bucket, dest)
	if err != nil {
		return err
	}
	if recipient.Coins, err = recipient.Coins.Add(amount); err != nil {
		return err
	}
	if !recipient.Coins.IsNonNegative() {
		return errors.Wrap(errors.ErrInsufficientAmount, "balance below zero")
	}
	return saveSet(db, c.bucket, dest, recipient)
}
