package sigchan

import (
	"testing"
	"time"

	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/app"
	"github.com/iov-one/paygate/coin"
	"github.com/iov-one/paygate/crypto"
	"github.com/iov-one/paygate/errors"
	"github.com/iov-one/paygate/gatetest"
	"github.com/iov-one/paygate/x/asset"
	"github.com/iov-one/paygate/x/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// hostileAdapter calls back into the router on every transfer.
type hostileAdapter struct {
	mock.Mock
	asset.Adapter
}

func (m *hostileAdapter) Transfer(ctx paygate.Context, db paygate.KVStore, from, to paygate.Address, amount coin.Coin) error {
	return m.Called(ctx, db, from, to, amount).Error(0)
}

type hostileResolver struct {
	adapter asset.Adapter
}

func (r hostileResolver) Resolve(paygate.ReadOnlyKVStore, string) (asset.Adapter, error) {
	return r.adapter, nil
}

func (r hostileResolver) Adapter(asset.Kind, string) (asset.Adapter, error) {
	return r.adapter, nil
}

func TestHostileReceiver(t *testing.T) {
	payer := gatetest.NewKey()
	payee := gatetest.NewCondition()
	key := ChannelKey(payer.Address(), payee.Address(), "ETH")

	// The returned context is authenticated by both parties.
	setup := func(t *testing.T) (*fixture, *hostileAdapter, paygate.Context) {
		f := newFixture(t)
		adapter := &hostileAdapter{}
		f.router = app.NewRouter()
		rec := crypto.Secp256k1Recoverer{}
		RegisterRoutes(f.router, f.auth, hostileResolver{adapter: adapter}, rec, utils.NewGuard())

		require.NoError(t, NewChannelBucket().Put(f.db, key, &Channel{
			Payer:        payer.Address(),
			Payee:        payee.Address(),
			Amount:       eth(10),
			Expiration:   paygate.AsUnixTime(now),
			ReclaimAt:    paygate.AsUnixTime(now.Add(time.Second)),
			SessionID:    1,
			LastSequence: 0,
			Kind:         asset.Native,
		}))
		ctx := paygate.WithBlockTime(f.ctx, now)
		ctx = f.auth.SetConditions(ctx, payer.Condition(), payee)
		return f, adapter, ctx
	}

	t.Run("reentrant call is rejected", func(t *testing.T) {
		f, adapter, ctx := setup(t)
		redeem := redeemMsg(t, payer, payee.Address(), eth(3), 1, 1)
		reclaim := &ReclaimMsg{Payer: payer.Address(), Payee: payee.Address(), Ticker: "ETH"}

		var nested []error
		adapter.On("Transfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				ctx := args.Get(0).(paygate.Context)
				db := args.Get(1).(paygate.KVStore)
				// The channel is settled before any value leaves it.
				ch, err := NewChannelBucket().Find(db, key)
				require.NoError(t, err)
				assert.False(t, ch.IsLive())

				for _, msg := range []paygate.Msg{redeem, reclaim} {
					_, err := f.router.Deliver(ctx, db, &gatetest.Tx{Msg: msg})
					nested = append(nested, err)
				}
			}).
			Return(nil)

		_, err := f.router.Deliver(ctx, f.db, &gatetest.Tx{Msg: redeem})
		require.NoError(t, err)
		adapter.AssertNumberOfCalls(t, "Transfer", 2)
		require.Len(t, nested, 4)
		for i, err := range nested {
			assert.True(t, errors.ErrReentrancy.Is(err), "nested call %d: %+v", i, err)
		}
	})

	t.Run("failed transfer keeps the channel", func(t *testing.T) {
		f, adapter, ctx := setup(t)
		adapter.On("Transfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(errors.Wrap(errors.ErrState, "receiver refused"))

		cases := map[string]struct {
			at  time.Time
			msg paygate.Msg
		}{
			"redeem":  {at: now, msg: redeemMsg(t, payer, payee.Address(), eth(3), 1, 1)},
			"reclaim": {at: now.Add(time.Second), msg: &ReclaimMsg{Payer: payer.Address(), Payee: payee.Address(), Ticker: "ETH"}},
		}
		for name, tc := range cases {
			ctx := paygate.WithBlockTime(ctx, tc.at)
			_, err := f.router.Deliver(ctx, f.db, &gatetest.Tx{Msg: tc.msg})
			assert.True(t, asset.ErrTransfer.Is(err), "%s: %+v", name, err)

			ch := f.channel(t, payer.Address(), payee.Address(), "ETH")
			assert.True(t, eth(10).Equals(ch.Amount), name)
			assert.Equal(t, int64(0), ch.LastSequence, name)
		}
	})
}
