package asset

import (
	"context"
	"testing"
	"time"

	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/coin"
	"github.com/iov-one/paygate/crypto"
	"github.com/iov-one/paygate/errors"
	"github.com/iov-one/paygate/gatetest"
	"github.com/iov-one/paygate/gconf"
	"github.com/iov-one/paygate/store"
	"github.com/iov-one/paygate/x"
	"github.com/iov-one/paygate/x/cash"
	"github.com/iov-one/paygate/x/currency"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testChainID = "paygate-test"

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db       paygate.CacheableKVStore
	ctrl     cash.Controller
	resolver *BaseResolver
	ctx      paygate.Context
}

func newFixture(t testing.TB) fixture {
	t.Helper()
	db := store.MemStore()
	require.NoError(t, gconf.Save(db, packageName, &Configuration{NativeTicker: "ETH"}))
	require.NoError(t, currency.NewTokenInfoBucket().Save(db, currency.NewTokenInfo("DAI", "Dai Stable")))

	ctx := paygate.WithBlockTime(context.Background(), now)
	ctx = paygate.WithChainID(ctx, testChainID)

	ctrl := cash.NewController()
	return fixture{
		db:       db,
		ctrl:     ctrl,
		resolver: NewResolver(ctrl, crypto.Secp256k1Recoverer{}),
		ctx:      ctx,
	}
}

func (f fixture) issue(t testing.TB, owner paygate.Address, c coin.Coin) {
	t.Helper()
	require.NoError(t, f.ctrl.IssueCoins(f.db, owner, c))
}

func (f fixture) balance(t testing.TB, owner paygate.Address, ticker string) coin.Coin {
	t.Helper()
	coins, err := f.ctrl.Balance(f.db, owner)
	require.NoError(t, err)
	return coins.Balance(ticker)
}

func TestResolve(t *testing.T) {
	f := newFixture(t)

	cases := map[string]struct {
		ticker   string
		wantKind Kind
		wantErr  *errors.Error
	}{
		"native":           {ticker: "ETH", wantKind: Native},
		"registered token": {ticker: "DAI", wantKind: Token},
		"unknown token":    {ticker: "XYZ", wantErr: ErrNonCompliant},
		"invalid ticker":   {ticker: "eth", wantErr: errors.ErrCurrency},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			a, err := f.resolver.Resolve(f.db, tc.ticker)
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr.Is(err), "got %+v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantKind, a.Kind())
			assert.Equal(t, tc.ticker, a.Ticker())
		})
	}

	_, err := NewResolver(cash.NewController(), nil).Resolve(store.MemStore(), "ETH")
	assert.True(t, errors.ErrNotFound.Is(err), "missing configuration: %+v", err)
}

func TestNativeDeposit(t *testing.T) {
	payer := gatetest.NewCondition().Address()
	escrow := gatetest.NewCondition().Address()
	engine := gatetest.NewCondition().Address()

	cases := map[string]struct {
		amount      coin.Coin
		attached    coin.Coin
		wantErr     *errors.Error
		wantEscrow  coin.Coin
		wantBalance coin.Coin
	}{
		"attached value matches": {
			amount:      coin.NewCoin(4, 0, "ETH"),
			attached:    coin.NewCoin(4, 0, "ETH"),
			wantEscrow:  coin.NewCoin(4, 0, "ETH"),
			wantBalance: coin.NewCoin(6, 0, "ETH"),
		},
		"attached value missing": {
			amount:      coin.NewCoin(4, 0, "ETH"),
			wantErr:     errors.ErrAmount,
			wantEscrow:  coin.NewCoin(0, 0, "ETH"),
			wantBalance: coin.NewCoin(10, 0, "ETH"),
		},
		"attached value differs": {
			amount:      coin.NewCoin(4, 0, "ETH"),
			attached:    coin.NewCoin(3, 0, "ETH"),
			wantErr:     errors.ErrAmount,
			wantEscrow:  coin.NewCoin(0, 0, "ETH"),
			wantBalance: coin.NewCoin(10, 0, "ETH"),
		},
		"more than the balance": {
			amount:      coin.NewCoin(11, 0, "ETH"),
			attached:    coin.NewCoin(11, 0, "ETH"),
			wantErr:     errors.ErrInsufficientAmount,
			wantEscrow:  coin.NewCoin(0, 0, "ETH"),
			wantBalance: coin.NewCoin(10, 0, "ETH"),
		},
		"wrong currency": {
			amount:      coin.NewCoin(1, 0, "DAI"),
			attached:    coin.NewCoin(1, 0, "DAI"),
			wantErr:     errors.ErrCurrency,
			wantEscrow:  coin.NewCoin(0, 0, "ETH"),
			wantBalance: coin.NewCoin(10, 0, "ETH"),
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			f.issue(t, payer, coin.NewCoin(10, 0, "ETH"))
			a, err := f.resolver.Resolve(f.db, "ETH")
			require.NoError(t, err)

			err = a.Deposit(f.ctx, f.db, engine, payer, escrow, tc.amount, tc.attached)
			if tc.wantErr == nil {
				require.NoError(t, err)
			} else {
				assert.True(t, tc.wantErr.Is(err), "got %+v", err)
			}
			assert.True(t, tc.wantEscrow.Equals(f.balance(t, escrow, "ETH")))
			assert.True(t, tc.wantBalance.Equals(f.balance(t, payer, "ETH")))
		})
	}
}

func TestNativeUnsupported(t *testing.T) {
	f := newFixture(t)
	a, err := f.resolver.Adapter(Native, "ETH")
	require.NoError(t, err)

	addr := gatetest.NewCondition().Address()
	_, err = a.Allowance(f.db, addr, addr)
	assert.True(t, ErrUnsupported.Is(err))
	err = a.TransferFrom(f.ctx, f.db, addr, addr, addr, coin.NewCoin(1, 0, "ETH"))
	assert.True(t, ErrUnsupported.Is(err))
	err = a.ConsumeApproval(f.ctx, f.db, Approval{})
	assert.True(t, ErrUnsupported.Is(err))
}

func TestTokenDeposit(t *testing.T) {
	payer := gatetest.NewCondition().Address()
	escrow := gatetest.NewCondition().Address()
	engine := gatetest.NewCondition().Address()

	cases := map[string]struct {
		allowance     coin.Coin
		amount        coin.Coin
		attached      coin.Coin
		wantErr       *errors.Error
		wantEscrow    coin.Coin
		wantAllowance coin.Coin
	}{
		"pulled using the allowance": {
			allowance:     coin.NewCoin(5, 0, "DAI"),
			amount:        coin.NewCoin(3, 0, "DAI"),
			wantEscrow:    coin.NewCoin(3, 0, "DAI"),
			wantAllowance: coin.NewCoin(2, 0, "DAI"),
		},
		"whole allowance is consumed": {
			allowance:     coin.NewCoin(3, 0, "DAI"),
			amount:        coin.NewCoin(3, 0, "DAI"),
			wantEscrow:    coin.NewCoin(3, 0, "DAI"),
			wantAllowance: coin.NewCoin(0, 0, "DAI"),
		},
		"insufficient allowance": {
			allowance:     coin.NewCoin(2, 0, "DAI"),
			amount:        coin.NewCoin(3, 0, "DAI"),
			wantErr:       ErrAllowance,
			wantEscrow:    coin.NewCoin(0, 0, "DAI"),
			wantAllowance: coin.NewCoin(2, 0, "DAI"),
		},
		"no allowance": {
			amount:        coin.NewCoin(3, 0, "DAI"),
			wantErr:       ErrAllowance,
			wantEscrow:    coin.NewCoin(0, 0, "DAI"),
			wantAllowance: coin.NewCoin(0, 0, "DAI"),
		},
		"attached value is rejected": {
			allowance:     coin.NewCoin(5, 0, "DAI"),
			amount:        coin.NewCoin(3, 0, "DAI"),
			attached:      coin.NewCoin(3, 0, "DAI"),
			wantErr:       errors.ErrAmount,
			wantEscrow:    coin.NewCoin(0, 0, "DAI"),
			wantAllowance: coin.NewCoin(5, 0, "DAI"),
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			f.issue(t, payer, coin.NewCoin(10, 0, "DAI"))
			if !tc.allowance.IsZero() {
				require.NoError(t, f.resolver.allowances.SetAllowance(f.db, payer, engine, tc.allowance))
			}
			a, err := f.resolver.Resolve(f.db, "DAI")
			require.NoError(t, err)

			err = a.Deposit(f.ctx, f.db, engine, payer, escrow, tc.amount, tc.attached)
			if tc.wantErr == nil {
				require.NoError(t, err)
			} else {
				assert.True(t, tc.wantErr.Is(err), "got %+v", err)
			}
			assert.True(t, tc.wantEscrow.Equals(f.balance(t, escrow, "DAI")))

			left, err := a.Allowance(f.db, payer, engine)
			require.NoError(t, err)
			assert.True(t, tc.wantAllowance.Equals(left), "allowance %s", left)
		})
	}
}

func TestTokenProbeAtDeposit(t *testing.T) {
	f := newFixture(t)
	// An adapter for an unregistered token can be built, but cannot fund.
	a, err := f.resolver.Adapter(Token, "XYZ")
	require.NoError(t, err)
	addr := gatetest.NewCondition().Address()
	err = a.Deposit(f.ctx, f.db, addr, addr, addr, coin.NewCoin(1, 0, "XYZ"), coin.Coin{})
	assert.True(t, ErrNonCompliant.Is(err))
}

func TestConsumeApproval(t *testing.T) {
	owner := gatetest.NewKey()
	stranger := gatetest.NewKey()
	spender := gatetest.NewCondition().Address()

	approval := func(t testing.TB, key crypto.Signer, chainID string, nonce int64, expiry time.Time) Approval {
		a := Approval{
			Spender: spender,
			Amount:  coin.NewCoin(7, 0, "DAI"),
			Expiry:  paygate.AsUnixTime(expiry),
		}
		require.NoError(t, SignApproval(key, chainID, &a, nonce))
		return a
	}

	cases := map[string]struct {
		approval      func(t testing.TB) Approval
		wantErr       *errors.Error
		wantAllowance coin.Coin
	}{
		"valid approval": {
			approval: func(t testing.TB) Approval {
				return approval(t, owner, testChainID, 0, now.Add(time.Hour))
			},
			wantAllowance: coin.NewCoin(7, 0, "DAI"),
		},
		"expired": {
			approval: func(t testing.TB) Approval {
				return approval(t, owner, testChainID, 0, now)
			},
			wantErr:       errors.ErrExpired,
			wantAllowance: coin.NewCoin(0, 0, "DAI"),
		},
		"signed for another chain": {
			approval: func(t testing.TB) Approval {
				return approval(t, owner, "another-chain", 0, now.Add(time.Hour))
			},
			wantErr:       errors.ErrUnauthorized,
			wantAllowance: coin.NewCoin(0, 0, "DAI"),
		},
		"signed with a future nonce": {
			approval: func(t testing.TB) Approval {
				return approval(t, owner, testChainID, 1, now.Add(time.Hour))
			},
			wantErr:       errors.ErrUnauthorized,
			wantAllowance: coin.NewCoin(0, 0, "DAI"),
		},
		"signer is not the owner": {
			approval: func(t testing.TB) Approval {
				a := approval(t, stranger, testChainID, 0, now.Add(time.Hour))
				a.Owner = owner.Address()
				return a
			},
			wantErr:       errors.ErrUnauthorized,
			wantAllowance: coin.NewCoin(0, 0, "DAI"),
		},
		"malformed signature": {
			approval: func(t testing.TB) Approval {
				a := approval(t, owner, testChainID, 0, now.Add(time.Hour))
				a.Signature = a.Signature[:10]
				return a
			},
			wantErr:       errors.ErrInput,
			wantAllowance: coin.NewCoin(0, 0, "DAI"),
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			a, err := f.resolver.Resolve(f.db, "DAI")
			require.NoError(t, err)

			err = a.ConsumeApproval(f.ctx, f.db, tc.approval(t))
			if tc.wantErr == nil {
				require.NoError(t, err)
			} else {
				assert.True(t, tc.wantErr.Is(err), "got %+v", err)
			}
			got, err := a.Allowance(f.db, owner.Address(), spender)
			require.NoError(t, err)
			assert.True(t, tc.wantAllowance.Equals(got), "allowance %s", got)
		})
	}
}

func TestConsumeApprovalIsSingleUse(t *testing.T) {
	f := newFixture(t)
	owner := gatetest.NewKey()
	spender := gatetest.NewCondition().Address()

	a, err := f.resolver.Resolve(f.db, "DAI")
	require.NoError(t, err)

	ap := Approval{Spender: spender, Amount: coin.NewCoin(1, 0, "DAI"), Expiry: paygate.AsUnixTime(now.Add(time.Minute))}
	require.NoError(t, SignApproval(owner, testChainID, &ap, 0))
	require.NoError(t, a.ConsumeApproval(f.ctx, f.db, ap))

	err = a.ConsumeApproval(f.ctx, f.db, ap)
	assert.True(t, errors.ErrUnauthorized.Is(err), "replay: %+v", err)

	// The next nonce is accepted.
	next := Approval{Spender: spender, Amount: coin.NewCoin(2, 0, "DAI"), Expiry: ap.Expiry}
	require.NoError(t, SignApproval(owner, testChainID, &next, 1))
	require.NoError(t, a.ConsumeApproval(f.ctx, f.db, next))

	got, err := a.Allowance(f.db, owner.Address(), spender)
	require.NoError(t, err)
	assert.True(t, coin.NewCoin(2, 0, "DAI").Equals(got))
}

func TestExpiredApprovalCarriesTime(t *testing.T) {
	f := newFixture(t)
	owner := gatetest.NewKey()

	a, err := f.resolver.Resolve(f.db, "DAI")
	require.NoError(t, err)

	expiry := paygate.AsUnixTime(now.Add(-time.Second))
	ap := Approval{Spender: owner.Address(), Amount: coin.NewCoin(1, 0, "DAI"), Expiry: expiry}
	require.NoError(t, SignApproval(owner, testChainID, &ap, 0))

	err = a.ConsumeApproval(f.ctx, f.db, ap)
	require.True(t, errors.ErrExpired.Is(err))
	at, ok := x.TimeOf(err)
	require.True(t, ok)
	assert.Equal(t, expiry, at)
}

func TestWrapTransfer(t *testing.T) {
	assert.Nil(t, WrapTransfer(nil, "payee"))

	err := WrapTransfer(errors.Wrap(errors.ErrInsufficientAmount, "empty"), "payee")
	assert.True(t, ErrTransfer.Is(err))
	assert.True(t, errors.ErrInsufficientAmount.Is(err))

	again := WrapTransfer(err, "outer")
	assert.True(t, ErrTransfer.Is(again))
}
