package asset

import (
	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/coin"
	"github.com/iov-one/paygate/crypto"
	"github.com/iov-one/paygate/errors"
	"github.com/iov-one/paygate/x"
	"github.com/iov-one/paygate/x/cash"
	"github.com/iov-one/paygate/x/currency"
)

// Adapter moves value of a single asset.
type Adapter interface {
	Kind() Kind
	Ticker() string

	// Probe returns an error if the asset cannot be used for funding.
	Probe(db paygate.ReadOnlyKVStore) error

	Balance(db paygate.ReadOnlyKVStore, owner paygate.Address) (coin.Coin, error)
	Allowance(db paygate.ReadOnlyKVStore, owner, spender paygate.Address) (coin.Coin, error)

	// Deposit is the funding path shared by all engines. The spender is
	// the engine pulling the funds, attached is the value sent together
	// with the funding message.
	Deposit(ctx paygate.Context, db paygate.KVStore, spender, from, to paygate.Address, amount, attached coin.Coin) error

	Transfer(ctx paygate.Context, db paygate.KVStore, from, to paygate.Address, amount coin.Coin) error
	TransferFrom(ctx paygate.Context, db paygate.KVStore, spender, from, to paygate.Address, amount coin.Coin) error

	// ConsumeApproval verifies a signed approval and turns it into an
	// allowance. Each approval is accepted at most once.
	ConsumeApproval(ctx paygate.Context, db paygate.KVStore, a Approval) error
}

// Resolver finds the adapter of an asset.
type Resolver interface {
	// Resolve returns the adapter of given ticker after probing it.
	Resolve(db paygate.ReadOnlyKVStore, ticker string) (Adapter, error)

	// Adapter returns the adapter of an already resolved asset.
	Adapter(kind Kind, ticker string) (Adapter, error)
}

// BaseResolver serves native and token adapters backed by cash wallets.
type BaseResolver struct {
	cash       cash.Controller
	tokens     *currency.TokenInfoBucket
	allowances *AllowanceBucket
	nonces     *NonceBucket
	recoverer  crypto.Recoverer
}

var _ Resolver = (*BaseResolver)(nil)

// NewResolver returns a resolver moving value between cash wallets. The
// recoverer is used to verify delegated approvals.
func NewResolver(ctrl cash.Controller, rec crypto.Recoverer) *BaseResolver {
	return &BaseResolver{
		cash:       ctrl,
		tokens:     currency.NewTokenInfoBucket(),
		allowances: NewAllowanceBucket(),
		nonces:     NewNonceBucket(),
		recoverer:  rec,
	}
}

func (r *BaseResolver) Resolve(db paygate.ReadOnlyKVStore, ticker string) (Adapter, error) {
	if !coin.IsCC(ticker) {
		return nil, errors.Wrapf(errors.ErrCurrency, "invalid ticker %q", ticker)
	}
	conf, err := LoadConfiguration(db)
	if err != nil {
		return nil, err
	}
	kind := Token
	if ticker == conf.NativeTicker {
		kind = Native
	}
	a, err := r.Adapter(kind, ticker)
	if err != nil {
		return nil, err
	}
	if err := a.Probe(db); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *BaseResolver) Adapter(kind Kind, ticker string) (Adapter, error) {
	switch kind {
	case Native:
		return &NativeAdapter{ticker: ticker, cash: r.cash}, nil
	case Token:
		return &TokenAdapter{
			ticker:     ticker,
			cash:       r.cash,
			tokens:     r.tokens,
			allowances: r.allowances,
			nonces:     r.nonces,
			recoverer:  r.recoverer,
		}, nil
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown asset %s", kind)
	}
}

// NativeAdapter moves the native coin. Value must be attached to a
// deposit, there are no allowances.
type NativeAdapter struct {
	ticker string
	cash   cash.Controller
}

var _ Adapter = (*NativeAdapter)(nil)

func (a *NativeAdapter) Kind() Kind     { return Native }
func (a *NativeAdapter) Ticker() string { return a.ticker }

func (a *NativeAdapter) Probe(paygate.ReadOnlyKVStore) error {
	return nil
}

func (a *NativeAdapter) Balance(db paygate.ReadOnlyKVStore, owner paygate.Address) (coin.Coin, error) {
	return balance(db, a.cash, owner, a.ticker)
}

func (a *NativeAdapter) Allowance(paygate.ReadOnlyKVStore, paygate.Address, paygate.Address) (coin.Coin, error) {
	return coin.Coin{}, errors.Wrap(ErrUnsupported, "native asset has no allowance")
}

func (a *NativeAdapter) Deposit(ctx paygate.Context, db paygate.KVStore, spender, from, to paygate.Address, amount, attached coin.Coin) error {
	if err := checkTicker(a.ticker, amount); err != nil {
		return err
	}
	if !attached.Equals(amount) {
		return errors.Wrapf(errors.ErrAmount, "attached value %s must equal amount %s", attached, amount)
	}
	return a.cash.MoveCoins(db, from, to, amount)
}

func (a *NativeAdapter) Transfer(ctx paygate.Context, db paygate.KVStore, from, to paygate.Address, amount coin.Coin) error {
	return transfer(db, a.cash, a.ticker, from, to, amount)
}

func (a *NativeAdapter) TransferFrom(paygate.Context, paygate.KVStore, paygate.Address, paygate.Address, paygate.Address, coin.Coin) error {
	return errors.Wrap(ErrUnsupported, "native asset has no transfer from")
}

func (a *NativeAdapter) ConsumeApproval(paygate.Context, paygate.KVStore, Approval) error {
	return errors.Wrap(ErrUnsupported, "native asset has no delegated approval")
}

// TokenAdapter moves a registered token. Deposits are pulled using an
// allowance granted to the spender.
type TokenAdapter struct {
	ticker     string
	cash       cash.Controller
	tokens     *currency.TokenInfoBucket
	allowances *AllowanceBucket
	nonces     *NonceBucket
	recoverer  crypto.Recoverer
}

var _ Adapter = (*TokenAdapter)(nil)

func (a *TokenAdapter) Kind() Kind     { return Token }
func (a *TokenAdapter) Ticker() string { return a.ticker }

// Probe requires the token to be registered.
func (a *TokenAdapter) Probe(db paygate.ReadOnlyKVStore) error {
	ok, err := a.tokens.IsRegistered(db, a.ticker)
	if err != nil {
		return errors.Wrap(err, "token registry")
	}
	if !ok {
		return errors.Wrapf(ErrNonCompliant, "token %s is not registered", a.ticker)
	}
	return nil
}

func (a *TokenAdapter) Balance(db paygate.ReadOnlyKVStore, owner paygate.Address) (coin.Coin, error) {
	return balance(db, a.cash, owner, a.ticker)
}

func (a *TokenAdapter) Allowance(db paygate.ReadOnlyKVStore, owner, spender paygate.Address) (coin.Coin, error) {
	return a.allowances.Allowance(db, owner, spender, a.ticker)
}

func (a *TokenAdapter) Deposit(ctx paygate.Context, db paygate.KVStore, spender, from, to paygate.Address, amount, attached coin.Coin) error {
	if err := checkTicker(a.ticker, amount); err != nil {
		return err
	}
	if !attached.IsZero() {
		return errors.Wrapf(errors.ErrAmount, "token deposit cannot attach %s", attached)
	}
	if err := a.Probe(db); err != nil {
		return err
	}
	return a.TransferFrom(ctx, db, spender, from, to, amount)
}

func (a *TokenAdapter) Transfer(ctx paygate.Context, db paygate.KVStore, from, to paygate.Address, amount coin.Coin) error {
	return transfer(db, a.cash, a.ticker, from, to, amount)
}

// TransferFrom moves the amount out of the from wallet, decreasing the
// allowance of the spender.
func (a *TokenAdapter) TransferFrom(ctx paygate.Context, db paygate.KVStore, spender, from, to paygate.Address, amount coin.Coin) error {
	if err := checkTicker(a.ticker, amount); err != nil {
		return err
	}
	allowed, err := a.allowances.Allowance(db, from, spender, a.ticker)
	if err != nil {
		return err
	}
	if !allowed.IsGTE(amount) {
		return errors.Wrapf(ErrAllowance, "allowance %s, required %s", allowed, amount)
	}
	left, err := allowed.Subtract(amount)
	if err != nil {
		return err
	}
	if err := a.allowances.SetAllowance(db, from, spender, left); err != nil {
		return errors.Wrap(err, "update allowance")
	}
	return a.cash.MoveCoins(db, from, to, amount)
}

// ConsumeApproval verifies the approval signature against the chain ID and
// the owner nonce, then grants the allowance. The owner nonce is
// incremented so that the same approval cannot be used again.
func (a *TokenAdapter) ConsumeApproval(ctx paygate.Context, db paygate.KVStore, ap Approval) error {
	if err := ap.Validate(); err != nil {
		return err
	}
	if err := checkTicker(a.ticker, ap.Amount); err != nil {
		return err
	}
	if paygate.IsExpired(ctx, ap.Expiry) {
		return x.WithTime(errors.Wrap(errors.ErrExpired, "approval"), ap.Expiry)
	}
	nonce, err := a.nonces.Current(db, ap.Owner, a.ticker)
	if err != nil {
		return err
	}
	raw, err := ApprovalSignBytes(paygate.GetChainID(ctx), ap, nonce)
	if err != nil {
		return err
	}
	signer, err := a.recoverer.Recover(raw, ap.Signature)
	if err != nil {
		return errors.Wrap(err, "approval signature")
	}
	if !signer.Equals(ap.Owner) {
		return errors.Wrapf(errors.ErrUnauthorized, "approval signed by %s, not the owner", signer)
	}
	if err := a.nonces.Bump(db, ap.Owner, a.ticker); err != nil {
		return errors.Wrap(err, "bump nonce")
	}
	return a.allowances.SetAllowance(db, ap.Owner, ap.Spender, ap.Amount)
}

func checkTicker(ticker string, amount coin.Coin) error {
	if amount.Ticker != ticker {
		return errors.Wrapf(errors.ErrCurrency, "want %s, got %s", ticker, amount.Ticker)
	}
	return nil
}

func balance(db paygate.ReadOnlyKVStore, ctrl cash.Controller, owner paygate.Address, ticker string) (coin.Coin, error) {
	coins, err := ctrl.Balance(db, owner)
	if err != nil {
		return coin.Coin{}, err
	}
	return coins.Balance(ticker), nil
}

// transfer moves coins between wallets. Zero amounts are not transferred.
func transfer(db paygate.KVStore, ctrl cash.Controller, ticker string, from, to paygate.Address, amount coin.Coin) error {
	if err := checkTicker(ticker, amount); err != nil {
		return err
	}
	if amount.IsZero() {
		return nil
	}
	return ctrl.MoveCoins(db, from, to, amount)
}
