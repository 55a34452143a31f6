package hashchan

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/app"
	"github.com/iov-one/paygate/coin"
	"github.com/iov-one/paygate/crypto"
	"github.com/iov-one/paygate/errors"
	"github.com/iov-one/paygate/gatetest"
	"github.com/iov-one/paygate/gconf"
	"github.com/iov-one/paygate/store"
	"github.com/iov-one/paygate/x"
	"github.com/iov-one/paygate/x/asset"
	"github.com/iov-one/paygate/x/cash"
	"github.com/iov-one/paygate/x/currency"
	"github.com/iov-one/paygate/x/utils"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db     paygate.CacheableKVStore
	ctrl   cash.Controller
	auth   *gatetest.CtxAuth
	router *app.Router
	ctx    paygate.Context
}

func newFixture(t testing.TB) *fixture {
	t.Helper()
	db := store.MemStore()
	require.NoError(t, gconf.Save(db, "asset", &asset.Configuration{NativeTicker: "ETH"}))
	require.NoError(t, currency.NewTokenInfoBucket().Save(db, currency.NewTokenInfo("DAI", "Dai Stable")))
	require.NoError(t, Initializer{}.FromGenesis(paygate.Options{}, db))

	ctrl := cash.NewController()
	auth := &gatetest.CtxAuth{Key: "hashchan"}
	rt := app.NewRouter()
	RegisterRoutes(rt, auth, asset.NewResolver(ctrl, crypto.Secp256k1Recoverer{}), utils.NewGuard())

	return &fixture{
		db:     db,
		ctrl:   ctrl,
		auth:   auth,
		router: rt,
		ctx:    paygate.WithChainID(context.Background(), "paygate-test"),
	}
}

// deliver runs check and deliver of the message signed by given
// condition, at given block time.
func (f *fixture) deliver(signer paygate.Condition, at time.Time, msg paygate.Msg) (*paygate.DeliverResult, error) {
	ctx := paygate.WithBlockTime(f.ctx, at)
	ctx = f.auth.SetConditions(ctx, signer)
	tx := &gatetest.Tx{Msg: msg}
	if _, err := f.router.Check(ctx, f.db, tx); err != nil {
		return nil, err
	}
	return f.router.Deliver(ctx, f.db, tx)
}

func (f *fixture) balance(t testing.TB, owner paygate.Address, ticker string) coin.Coin {
	t.Helper()
	coins, err := f.ctrl.Balance(f.db, owner)
	require.NoError(t, err)
	return coins.Balance(ticker)
}

func eth(whole int64) coin.Coin {
	return coin.NewCoin(whole, 0, "ETH")
}

func TestChannelLifecycle(t *testing.T) {
	Convey("Given a funded payer and a hash chain of 100 ticks", t, func() {
		f := newFixture(t)
		payer := gatetest.NewCondition()
		payee := gatetest.NewCondition()
		So(f.ctrl.IssueCoins(f.db, payer.Address(), eth(10)), ShouldBeNil)

		chain, err := crypto.NewHashChain(crypto.SHA256, []byte("payee secret"), 100)
		So(err, ShouldBeNil)

		key := ChannelKey(payer.Address(), payee.Address(), "ETH")
		escrow := ChannelAddress(key)
		payeeUnlock := now.Add(100 * time.Second)
		payerUnlock := now.Add(200 * time.Second)

		res, err := f.deliver(payer, now, &OpenMsg{
			Payer:            payer.Address(),
			Payee:            payee.Address(),
			Anchor:           chain.Anchor(),
			Amount:           eth(10),
			ChainLength:      100,
			PayeeUnlockDelay: 100,
			PayerUnlockDelay: 200,
			Value:            eth(10),
		})
		So(err, ShouldBeNil)

		Convey("the deposit is held by the channel", func() {
			So(res.Data, ShouldResemble, key)
			So(f.balance(t, payer.Address(), "ETH").IsZero(), ShouldBeTrue)
			So(f.balance(t, escrow, "ETH").Equals(eth(10)), ShouldBeTrue)

			events := paygate.EventsFromTags(res.Tags)
			So(len(events), ShouldEqual, 1)
			So(events[0].Type, ShouldEqual, "hashchan/open")
		})

		Convey("a second channel for the same asset is rejected", func() {
			So(f.ctrl.IssueCoins(f.db, payer.Address(), eth(1)), ShouldBeNil)
			_, err := f.deliver(payer, now, &OpenMsg{
				Payer:            payer.Address(),
				Payee:            payee.Address(),
				Anchor:           chain.Anchor(),
				Amount:           eth(1),
				ChainLength:      100,
				PayeeUnlockDelay: 100,
				PayerUnlockDelay: 200,
				Value:            eth(1),
			})
			So(errors.ErrDuplicate.Is(err), ShouldBeTrue)
			So(f.balance(t, payer.Address(), "ETH").Equals(eth(1)), ShouldBeTrue)
		})

		redeem := func(ticks int) *RedeemMsg {
			preimage, err := chain.Preimage(ticks)
			So(err, ShouldBeNil)
			return &RedeemMsg{
				Payer:    payer.Address(),
				Payee:    payee.Address(),
				Ticker:   "ETH",
				Preimage: preimage,
				Ticks:    int64(ticks),
			}
		}

		Convey("the payee cannot redeem before the unlock time", func() {
			_, err := f.deliver(payee, payeeUnlock.Add(-time.Second), redeem(25))
			So(ErrLocked.Is(err), ShouldBeTrue)
			at, ok := x.TimeOf(err)
			So(ok, ShouldBeTrue)
			So(at, ShouldEqual, paygate.AsUnixTime(payeeUnlock))
		})

		Convey("the payer cannot redeem", func() {
			_, err := f.deliver(payer, payeeUnlock, redeem(25))
			So(errors.ErrUnauthorized.Is(err), ShouldBeTrue)
		})

		Convey("redeem at the unlock time splits the deposit", func() {
			res, err := f.deliver(payee, payeeUnlock, redeem(25))
			So(err, ShouldBeNil)

			So(f.balance(t, payee.Address(), "ETH").Equals(coin.NewCoin(2, 500000000, "ETH")), ShouldBeTrue)
			So(f.balance(t, payer.Address(), "ETH").Equals(coin.NewCoin(7, 500000000, "ETH")), ShouldBeTrue)
			So(f.balance(t, escrow, "ETH").IsZero(), ShouldBeTrue)

			events := paygate.EventsFromTags(res.Tags)
			So(len(events), ShouldEqual, 2)
			So(events[0].Type, ShouldEqual, "hashchan/redeem")
			So(events[1].Type, ShouldEqual, "hashchan/refund")

			Convey("and closes the channel", func() {
				_, err := f.deliver(payee, payeeUnlock, redeem(25))
				So(errors.ErrNotFound.Is(err), ShouldBeTrue)
				_, err = f.deliver(payer, payerUnlock, &ReclaimMsg{Payer: payer.Address(), Payee: payee.Address(), Ticker: "ETH"})
				So(errors.ErrNotFound.Is(err), ShouldBeTrue)
			})
		})

		Convey("redeem of the whole chain pays everything to the payee", func() {
			res, err := f.deliver(payee, payerUnlock, redeem(100))
			So(err, ShouldBeNil)
			So(f.balance(t, payee.Address(), "ETH").Equals(eth(10)), ShouldBeTrue)
			So(f.balance(t, payer.Address(), "ETH").IsZero(), ShouldBeTrue)

			events := paygate.EventsFromTags(res.Tags)
			So(len(events), ShouldEqual, 2)
			So(events[1].Type, ShouldEqual, "hashchan/refund")
		})

		Convey("claiming more ticks than the chain has is rejected", func() {
			msg := redeem(100)
			msg.Ticks = 101
			_, err := f.deliver(payee, payeeUnlock, msg)
			So(ErrTicks.Is(err), ShouldBeTrue)
			ticks, n, ok := TicksOf(err)
			So(ok, ShouldBeTrue)
			So(ticks, ShouldEqual, 101)
			So(n, ShouldEqual, 100)
		})

		Convey("a preimage that does not match the tick count is rejected", func() {
			msg := redeem(25)
			msg.Ticks = 26
			_, err := f.deliver(payee, payeeUnlock, msg)
			So(ErrChainMismatch.Is(err), ShouldBeTrue)
			So(f.balance(t, escrow, "ETH").Equals(eth(10)), ShouldBeTrue)
		})

		Convey("zero ticks are rejected", func() {
			_, err := f.deliver(payee, payeeUnlock, redeem(0))
			So(ErrZeroShare.Is(err), ShouldBeTrue)
		})

		Convey("the payer reclaims after the payer unlock time", func() {
			reclaim := &ReclaimMsg{Payer: payer.Address(), Payee: payee.Address(), Ticker: "ETH"}

			_, err := f.deliver(payer, payerUnlock.Add(-time.Second), reclaim)
			So(ErrLocked.Is(err), ShouldBeTrue)
			at, ok := x.TimeOf(err)
			So(ok, ShouldBeTrue)
			So(at, ShouldEqual, paygate.AsUnixTime(payerUnlock))

			_, err = f.deliver(payee, payerUnlock, reclaim)
			So(errors.ErrUnauthorized.Is(err), ShouldBeTrue)

			res, err := f.deliver(payer, payerUnlock, reclaim)
			So(err, ShouldBeNil)
			So(f.balance(t, payer.Address(), "ETH").Equals(eth(10)), ShouldBeTrue)
			So(f.balance(t, escrow, "ETH").IsZero(), ShouldBeTrue)
			events := paygate.EventsFromTags(res.Tags)
			So(len(events), ShouldEqual, 1)
			So(events[0].Type, ShouldEqual, "hashchan/reclaim")

			Convey("after which the payee cannot redeem", func() {
				_, err := f.deliver(payee, payerUnlock, redeem(25))
				So(errors.ErrNotFound.Is(err), ShouldBeTrue)
			})
		})
	})
}

func TestOpenValidation(t *testing.T) {
	payer := gatetest.NewCondition()
	payee := gatetest.NewCondition()
	chain, err := crypto.NewHashChain(crypto.SHA256, []byte("seed"), 10)
	require.NoError(t, err)

	valid := func() *OpenMsg {
		return &OpenMsg{
			Payer:            payer.Address(),
			Payee:            payee.Address(),
			Anchor:           chain.Anchor(),
			Amount:           eth(5),
			ChainLength:      10,
			PayeeUnlockDelay: 60,
			PayerUnlockDelay: 66,
			Value:            eth(5),
		}
	}

	cases := map[string]struct {
		signer  paygate.Condition
		msg     func() *OpenMsg
		wantErr *errors.Error
	}{
		"valid": {
			signer: payer,
			msg:    valid,
		},
		"not signed by the payer": {
			signer:  payee,
			msg:     valid,
			wantErr: errors.ErrUnauthorized,
		},
		"anchor of a different hash function": {
			signer: payer,
			msg: func() *OpenMsg {
				m := valid()
				m.Anchor = m.Anchor[:20]
				return m
			},
			wantErr: errors.ErrInput,
		},
		"zero payee": {
			signer: payer,
			msg: func() *OpenMsg {
				m := valid()
				m.Payee = make(paygate.Address, paygate.AddressLength)
				return m
			},
			wantErr: errors.ErrEmpty,
		},
		"payer delay too short": {
			signer: payer,
			msg: func() *OpenMsg {
				m := valid()
				m.PayerUnlockDelay = 65
				return m
			},
			wantErr: errors.ErrInput,
		},
		"chain too long": {
			signer: payer,
			msg: func() *OpenMsg {
				m := valid()
				m.ChainLength = crypto.MaxChainLength + 1
				return m
			},
			wantErr: errors.ErrInput,
		},
		"attached value does not match": {
			signer: payer,
			msg: func() *OpenMsg {
				m := valid()
				m.Value = eth(4)
				return m
			},
			wantErr: errors.ErrAmount,
		},
		"insufficient funds": {
			signer: payer,
			msg: func() *OpenMsg {
				m := valid()
				m.Amount = eth(50)
				m.Value = eth(50)
				return m
			},
			wantErr: errors.ErrInsufficientAmount,
		},
		"token without allowance": {
			signer: payer,
			msg: func() *OpenMsg {
				m := valid()
				m.Amount = coin.NewCoin(5, 0, "DAI")
				m.Value = coin.Coin{}
				return m
			},
			wantErr: asset.ErrAllowance,
		},
		"unknown token": {
			signer: payer,
			msg: func() *OpenMsg {
				m := valid()
				m.Amount = coin.NewCoin(5, 0, "XYZ")
				m.Value = coin.Coin{}
				return m
			},
			wantErr: asset.ErrNonCompliant,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			require.NoError(t, f.ctrl.IssueCoins(f.db, payer.Address(), eth(10)))
			require.NoError(t, f.ctrl.IssueCoins(f.db, payer.Address(), coin.NewCoin(10, 0, "DAI")))

			msg := tc.msg()
			_, err := f.deliver(tc.signer, now, msg)
			if tc.wantErr != nil {
				require.True(t, tc.wantErr.Is(err), "got %+v", err)
				assert.True(t, f.balance(t, payer.Address(), "ETH").Equals(eth(10)))
				err := NewChannelBucket().Has(f.db, ChannelKey(payer.Address(), msg.Payee, msg.Amount.Ticker))
				assert.True(t, errors.ErrNotFound.Is(err), "channel must not exist: %+v", err)
				return
			}
			require.NoError(t, err)
			assert.True(t, f.balance(t, payer.Address(), "ETH").Equals(eth(5)))
		})
	}
}

func TestTokenChannel(t *testing.T) {
	f := newFixture(t)
	payer := gatetest.NewCondition()
	payee := gatetest.NewCondition()
	dai := func(whole int64) coin.Coin { return coin.NewCoin(whole, 0, "DAI") }

	require.NoError(t, f.ctrl.IssueCoins(f.db, payer.Address(), dai(20)))
	allowances := asset.NewAllowanceBucket()
	require.NoError(t, allowances.SetAllowance(f.db, payer.Address(), EngineAddress, dai(15)))

	chain, err := crypto.NewHashChain(crypto.SHA256, []byte("dai seed"), 3)
	require.NoError(t, err)

	_, err = f.deliver(payer, now, &OpenMsg{
		Payer:       payer.Address(),
		Payee:       payee.Address(),
		Anchor:      chain.Anchor(),
		Amount:      dai(9),
		ChainLength: 3,
	})
	require.NoError(t, err)

	left, err := allowances.Allowance(f.db, payer.Address(), EngineAddress, "DAI")
	require.NoError(t, err)
	assert.True(t, dai(6).Equals(left), "allowance %s", left)
	assert.True(t, dai(11).Equals(f.balance(t, payer.Address(), "DAI")))

	ch, err := NewChannelBucket().Live(f.db, ChannelKey(payer.Address(), payee.Address(), "DAI"))
	require.NoError(t, err)
	assert.Equal(t, asset.Token, ch.Kind)
	assert.Equal(t, paygate.AsUnixTime(now), ch.PayeeUnlock)

	preimage, err := chain.Preimage(1)
	require.NoError(t, err)
	_, err = f.deliver(payee, now, &RedeemMsg{
		Payer:    payer.Address(),
		Payee:    payee.Address(),
		Ticker:   "DAI",
		Preimage: preimage,
		Ticks:    1,
	})
	require.NoError(t, err)
	assert.True(t, dai(3).Equals(f.balance(t, payee.Address(), "DAI")))
	assert.True(t, dai(17).Equals(f.balance(t, payer.Address(), "DAI")))
}

func TestZeroShare(t *testing.T) {
	cases := map[string]struct {
		ticks     int
		wantErr   *errors.Error
		wantPayee coin.Coin
	}{
		"single tick of a tiny deposit rounds to zero": {
			ticks:     1,
			wantErr:   ErrZeroShare,
			wantPayee: coin.Coin{Ticker: "ETH"},
		},
		"half of the chain": {
			ticks:     50,
			wantErr:   ErrZeroShare,
			wantPayee: coin.Coin{Ticker: "ETH"},
		},
		"whole chain": {
			ticks:     100,
			wantPayee: coin.NewCoin(0, 1, "ETH"),
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			payer := gatetest.NewCondition()
			payee := gatetest.NewCondition()
			tiny := coin.NewCoin(0, 1, "ETH")
			require.NoError(t, f.ctrl.IssueCoins(f.db, payer.Address(), tiny))

			chain, err := crypto.NewHashChain(crypto.SHA256, []byte("tiny"), 100)
			require.NoError(t, err)
			_, err = f.deliver(payer, now, &OpenMsg{
				Payer:       payer.Address(),
				Payee:       payee.Address(),
				Anchor:      chain.Anchor(),
				Amount:      tiny,
				ChainLength: 100,
				Value:       tiny,
			})
			require.NoError(t, err)

			preimage, err := chain.Preimage(tc.ticks)
			require.NoError(t, err)
			_, err = f.deliver(payee, now, &RedeemMsg{
				Payer:    payer.Address(),
				Payee:    payee.Address(),
				Ticker:   "ETH",
				Preimage: preimage,
				Ticks:    int64(tc.ticks),
			})
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr.Is(err), "got %+v", err)
			} else {
				require.NoError(t, err)
			}
			assert.True(t, tc.wantPayee.Equals(f.balance(t, payee.Address(), "ETH")))
		})
	}
}

func TestOpenMsgDelays(t *testing.T) {
	cases := map[string]struct {
		payee, payer paygate.UnixDuration
		wantErr      bool
	}{
		"no delays":          {payee: 0, payer: 0},
		"exactly 110%":       {payee: 10, payer: 11},
		"below 110%":         {payee: 10, payer: 10, wantErr: true},
		"rounded up":         {payee: 1, payer: 2},
		"rounded up, failed": {payee: 1, payer: 1, wantErr: true},
		"negative":           {payee: -1, payer: 0, wantErr: true},
		"too long":           {payee: 0, payer: maxDelay + 1, wantErr: true},
	}

	key := gatetest.NewCondition().Address()
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			msg := OpenMsg{
				Payer:            key,
				Payee:            key,
				Anchor:           []byte("anchor"),
				Amount:           eth(1),
				ChainLength:      1,
				PayeeUnlockDelay: tc.payee,
				PayerUnlockDelay: tc.payer,
			}
			err := msg.Validate()
			if tc.wantErr {
				assert.True(t, errors.ErrInput.Is(err), "got %+v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGenesis(t *testing.T) {
	cases := map[string]struct {
		opts     paygate.Options
		wantErr  *errors.Error
		wantHash string
		wantMax  int64
	}{
		"default configuration": {
			opts:     paygate.Options{},
			wantHash: crypto.SHA256Name,
			wantMax:  crypto.MaxChainLength,
		},
		"sha3": {
			opts: paygate.Options{
				"conf": json.RawMessage(`{"hashchan": {"hash": "sha3-256", "max_chain_length": 1000}}`),
			},
			wantHash: crypto.SHA3Name,
			wantMax:  1000,
		},
		"unknown hash": {
			opts: paygate.Options{
				"conf": json.RawMessage(`{"hashchan": {"hash": "md5", "max_chain_length": 1000}}`),
			},
			wantErr: errors.ErrInput,
		},
		"chain length limit too high": {
			opts: paygate.Options{
				"conf": json.RawMessage(`{"hashchan": {"hash": "sha256", "max_chain_length": 70000}}`),
			},
			wantErr: errors.ErrInput,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			err := Initializer{}.FromGenesis(tc.opts, db)
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr.Is(err), "got %+v", err)
				return
			}
			require.NoError(t, err)
			conf, err := loadConfiguration(db)
			require.NoError(t, err)
			assert.Equal(t, tc.wantHash, conf.Hash)
			assert.Equal(t, tc.wantMax, conf.MaxChainLength)
		})
	}
}

func TestConfiguredChainLimit(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, gconf.Save(f.db, packageName, &Configuration{Hash: crypto.SHA3Name, MaxChainLength: 10}))
	payer := gatetest.NewCondition()
	require.NoError(t, f.ctrl.IssueCoins(f.db, payer.Address(), eth(1)))

	chain, err := crypto.NewHashChain(crypto.SHA3, []byte("seed"), 11)
	require.NoError(t, err)
	msg := &OpenMsg{
		Payer:       payer.Address(),
		Payee:       gatetest.NewCondition().Address(),
		Anchor:      chain.Anchor(),
		Amount:      eth(1),
		ChainLength: 11,
		Value:       eth(1),
	}
	_, err = f.deliver(payer, now, msg)
	assert.True(t, errors.ErrInput.Is(err), "got %+v", err)

	msg.ChainLength = 10
	_, err = f.deliver(payer, now, msg)
	assert.NoError(t, err)
}

func TestQueryChannels(t *testing.T) {
	f := newFixture(t)
	payer := gatetest.NewCondition()
	require.NoError(t, f.ctrl.IssueCoins(f.db, payer.Address(), eth(2)))
	chain, err := crypto.NewHashChain(crypto.SHA256, []byte("seed"), 5)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := f.deliver(payer, now, &OpenMsg{
			Payer:       payer.Address(),
			Payee:       gatetest.NewCondition().Address(),
			Anchor:      chain.Anchor(),
			Amount:      eth(1),
			ChainLength: 5,
			Value:       eth(1),
		})
		require.NoError(t, err)
	}

	qr := paygate.NewQueryRouter()
	RegisterQuery(qr)
	models, err := qr.Query(f.db, "/hashchans?"+paygate.PrefixQueryMod, payer.Address())
	require.NoError(t, err)
	assert.Len(t, models, 2)
}
