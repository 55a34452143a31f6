package hashchan

import (
	"strconv"

	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/coin"
	"github.com/iov-one/paygate/crypto"
	"github.com/iov-one/paygate/errors"
	"github.com/iov-one/paygate/x"
	"github.com/iov-one/paygate/x/asset"
	"github.com/iov-one/paygate/x/utils"
)

// RegisterQuery registers channels under "/hashchans". Channels of a payer
// can be listed with a prefix query.
func RegisterQuery(qr paygate.QueryRouter) {
	NewChannelBucket().Register("hashchans", qr)
}

// RegisterRoutes registers all handlers of this extension. Every handler
// is protected by the guard and runs within a savepoint. The hash function
// is taken from the configuration.
func RegisterRoutes(r paygate.Registry, auth x.Authenticator, resolver asset.Resolver, guard utils.Guard) {
	RegisterRoutesWithHasher(r, auth, resolver, guard, nil)
}

// RegisterRoutesWithHasher is RegisterRoutes using given hash function
// instead of the configured one.
func RegisterRoutesWithHasher(r paygate.Registry, auth x.Authenticator, resolver asset.Resolver, guard utils.Guard, hasher crypto.Hasher) {
	e := newEngine(auth, resolver, hasher)
	r.Handle(pathOpenMsg, utils.Protect(guard, &OpenHandler{e}))
	r.Handle(pathRedeemMsg, utils.Protect(guard, &RedeemHandler{e}))
	r.Handle(pathReclaimMsg, utils.Protect(guard, &ReclaimHandler{e}))
}

// engine holds the dependencies shared by all handlers.
type engine struct {
	auth     x.Authenticator
	resolver asset.Resolver
	hasher   crypto.Hasher
	bucket   *ChannelBucket
}

func newEngine(auth x.Authenticator, resolver asset.Resolver, hasher crypto.Hasher) *engine {
	return &engine{
		auth:     auth,
		resolver: resolver,
		hasher:   hasher,
		bucket:   NewChannelBucket(),
	}
}

// settings returns the configuration and the hash function in use.
func (e *engine) settings(db paygate.ReadOnlyKVStore) (*Configuration, crypto.Hasher, error) {
	conf, err := loadConfiguration(db)
	if err != nil {
		return nil, nil, err
	}
	if e.hasher != nil {
		return conf, e.hasher, nil
	}
	h, err := conf.Hasher()
	if err != nil {
		return nil, nil, errors.Wrap(err, "configured hash")
	}
	return conf, h, nil
}

// OpenHandler funds a new channel.
type OpenHandler struct {
	*engine
}

var _ paygate.Handler = (*OpenHandler)(nil)

func NewOpenHandler(auth x.Authenticator, resolver asset.Resolver, hasher crypto.Hasher) *OpenHandler {
	return &OpenHandler{newEngine(auth, resolver, hasher)}
}

func (h *OpenHandler) Check(ctx paygate.Context, db paygate.KVStore, tx paygate.Tx) (*paygate.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &paygate.CheckResult{}, nil
}

func (h *OpenHandler) Deliver(ctx paygate.Context, db paygate.KVStore, tx paygate.Tx) (*paygate.DeliverResult, error) {
	msg, adapter, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	now, err := paygate.BlockUnixTime(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "block time")
	}
	payeeUnlock, err := now.AddDuration(msg.PayeeUnlockDelay)
	if err != nil {
		return nil, errors.Field("PayeeUnlockDelay", err, "unlock time")
	}
	payerUnlock, err := now.AddDuration(msg.PayerUnlockDelay)
	if err != nil {
		return nil, errors.Field("PayerUnlockDelay", err, "unlock time")
	}

	key := ChannelKey(msg.Payer, msg.Payee, msg.Amount.Ticker)
	ch := &Channel{
		Payer:       msg.Payer,
		Payee:       msg.Payee,
		Anchor:      msg.Anchor,
		Amount:      msg.Amount,
		ChainLength: msg.ChainLength,
		PayeeUnlock: payeeUnlock,
		PayerUnlock: payerUnlock,
		Kind:        adapter.Kind(),
	}
	if err := h.bucket.Put(db, key, ch); err != nil {
		return nil, errors.Wrap(err, "cannot save channel")
	}
	if err := adapter.Deposit(ctx, db, EngineAddress, msg.Payer, ChannelAddress(key), msg.Amount, msg.Value); err != nil {
		return nil, errors.Wrap(err, "deposit")
	}

	paygate.GetLogger(ctx).Info("hash chain channel opened",
		"payer", msg.Payer, "payee", msg.Payee, "ticker", msg.Amount.Ticker, "amount", msg.Amount)

	res := &paygate.DeliverResult{Data: key}
	res.Emit(paygate.NewEvent("hashchan/open").
		WithValue("payer", msg.Payer).
		WithValue("payee", msg.Payee).
		WithValue("amount", msg.Amount).
		WithBytes("anchor", msg.Anchor).
		With("chain_length", strconv.FormatInt(msg.ChainLength, 10)).
		WithValue("payee_unlock", payeeUnlock).
		WithValue("payer_unlock", payerUnlock))
	return res, nil
}

func (h *OpenHandler) validate(ctx paygate.Context, db paygate.KVStore, tx paygate.Tx) (*OpenMsg, asset.Adapter, error) {
	var msg OpenMsg
	if err := paygate.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Payer) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "payer signature missing")
	}

	conf, hasher, err := h.settings(db)
	if err != nil {
		return nil, nil, err
	}
	if msg.ChainLength > conf.MaxChainLength {
		return nil, nil, errors.Field("ChainLength", errors.ErrInput,
			"chain length %d exceeds %d", msg.ChainLength, conf.MaxChainLength)
	}
	if len(msg.Anchor) != hasher.Size() {
		return nil, nil, errors.Field("Anchor", errors.ErrInput,
			"%s anchor must be %d bytes", hasher.Name(), hasher.Size())
	}

	key := ChannelKey(msg.Payer, msg.Payee, msg.Amount.Ticker)
	switch err := h.bucket.Has(db, key); {
	case err == nil:
		return nil, nil, errors.Wrap(errors.ErrDuplicate, "channel is open")
	case !errors.ErrNotFound.Is(err):
		return nil, nil, err
	}

	adapter, err := h.resolver.Resolve(db, msg.Amount.Ticker)
	if err != nil {
		return nil, nil, errors.Wrap(err, "asset")
	}
	return &msg, adapter, nil
}

// RedeemHandler pays the payee for the proven usage and refunds the rest.
type RedeemHandler struct {
	*engine
}

var _ paygate.Handler = (*RedeemHandler)(nil)

func NewRedeemHandler(auth x.Authenticator, resolver asset.Resolver, hasher crypto.Hasher) *RedeemHandler {
	return &RedeemHandler{newEngine(auth, resolver, hasher)}
}

func (h *RedeemHandler) Check(ctx paygate.Context, db paygate.KVStore, tx paygate.Tx) (*paygate.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &paygate.CheckResult{}, nil
}

func (h *RedeemHandler) Deliver(ctx paygate.Context, db paygate.KVStore, tx paygate.Tx) (*paygate.DeliverResult, error) {
	msg, ch, share, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	refund, err := ch.Amount.Subtract(share)
	if err != nil {
		return nil, err
	}

	key := ChannelKey(msg.Payer, msg.Payee, msg.Ticker)
	if err := h.bucket.Delete(db, key); err != nil {
		return nil, errors.Wrap(err, "cannot delete channel")
	}

	adapter, err := h.resolver.Adapter(ch.Kind, msg.Ticker)
	if err != nil {
		return nil, err
	}
	escrow := ChannelAddress(key)
	if err := adapter.Transfer(ctx, db, escrow, ch.Payee, share); err != nil {
		return nil, asset.WrapTransfer(err, "payee share")
	}
	if err := adapter.Transfer(ctx, db, escrow, ch.Payer, refund); err != nil {
		return nil, asset.WrapTransfer(err, "payer refund")
	}

	paygate.GetLogger(ctx).Info("hash chain channel redeemed",
		"payer", ch.Payer, "payee", ch.Payee, "ticker", msg.Ticker, "ticks", msg.Ticks, "share", share)

	res := &paygate.DeliverResult{}
	res.Emit(
		paygate.NewEvent("hashchan/redeem").
			WithValue("payer", ch.Payer).
			WithValue("payee", ch.Payee).
			WithValue("amount", share).
			WithBytes("preimage", msg.Preimage).
			With("ticks", strconv.FormatInt(msg.Ticks, 10)),
		paygate.NewEvent("hashchan/refund").
			WithValue("payer", ch.Payer).
			WithValue("payee", ch.Payee).
			WithValue("amount", refund),
	)
	return res, nil
}

// validate returns the message, the channel and the payee share.
func (h *RedeemHandler) validate(ctx paygate.Context, db paygate.KVStore, tx paygate.Tx) (*RedeemMsg, *Channel, coin.Coin, error) {
	var msg RedeemMsg
	if err := paygate.LoadMsg(tx, &msg); err != nil {
		return nil, nil, coin.Coin{}, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Payee) {
		return nil, nil, coin.Coin{}, errors.Wrap(errors.ErrUnauthorized, "payee signature missing")
	}

	ch, err := h.bucket.Live(db, ChannelKey(msg.Payer, msg.Payee, msg.Ticker))
	if err != nil {
		return nil, nil, coin.Coin{}, err
	}

	now, err := paygate.BlockUnixTime(ctx)
	if err != nil {
		return nil, nil, coin.Coin{}, errors.Wrap(err, "block time")
	}
	if now < ch.PayeeUnlock {
		return nil, nil, coin.Coin{}, x.NewTimeError(ErrLocked, ch.PayeeUnlock, "payee cannot redeem yet")
	}
	if msg.Ticks > ch.ChainLength {
		return nil, nil, coin.Coin{}, newTicksError(msg.Ticks, ch.ChainLength)
	}

	_, hasher, err := h.settings(db)
	if err != nil {
		return nil, nil, coin.Coin{}, err
	}
	if !crypto.VerifyHashChain(hasher, ch.Anchor, msg.Preimage, int(msg.Ticks)) {
		return nil, nil, coin.Coin{}, errors.Wrapf(ErrChainMismatch, "%d ticks", msg.Ticks)
	}

	share, err := ch.Amount.Fraction(msg.Ticks, ch.ChainLength)
	if err != nil {
		return nil, nil, coin.Coin{}, errors.Wrap(err, "payee share")
	}
	if share.IsZero() {
		return nil, nil, coin.Coin{}, errors.Wrapf(ErrZeroShare, "%d of %d ticks of %s", msg.Ticks, ch.ChainLength, ch.Amount)
	}
	return &msg, ch, share, nil
}

// ReclaimHandler returns the deposit to the payer once the payer unlock
// time has passed.
type ReclaimHandler struct {
	*engine
}

var _ paygate.Handler = (*ReclaimHandler)(nil)

func NewReclaimHandler(auth x.Authenticator, resolver asset.Resolver) *ReclaimHandler {
	return &ReclaimHandler{newEngine(auth, resolver, nil)}
}

func (h *ReclaimHandler) Check(ctx paygate.Context, db paygate.KVStore, tx paygate.Tx) (*paygate.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &paygate.CheckResult{}, nil
}

func (h *ReclaimHandler) Deliver(ctx paygate.Context, db paygate.KVStore, tx paygate.Tx) (*paygate.DeliverResult, error) {
	msg, ch, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	key := ChannelKey(msg.Payer, msg.Payee, msg.Ticker)
	if err := h.bucket.Delete(db, key); err != nil {
		return nil, errors.Wrap(err, "cannot delete channel")
	}
	adapter, err := h.resolver.Adapter(ch.Kind, msg.Ticker)
	if err != nil {
		return nil, err
	}
	if err := adapter.Transfer(ctx, db, ChannelAddress(key), ch.Payer, ch.Amount); err != nil {
		return nil, asset.WrapTransfer(err, "reclaim")
	}

	paygate.GetLogger(ctx).Info("hash chain channel reclaimed",
		"payer", ch.Payer, "payee", ch.Payee, "ticker", msg.Ticker, "amount", ch.Amount)

	res := &paygate.DeliverResult{}
	res.Emit(paygate.NewEvent("hashchan/reclaim").
		WithValue("payer", ch.Payer).
		WithValue("payee", ch.Payee).
		WithValue("amount", ch.Amount))
	return res, nil
}

func (h *ReclaimHandler) validate(ctx paygate.Context, db paygate.KVStore, tx paygate.Tx) (*ReclaimMsg, *Channel, error) {
	var msg ReclaimMsg
	if err := paygate.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Payer) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "payer signature missing")
	}
	ch, err := h.bucket.Live(db, ChannelKey(msg.Payer, msg.Payee, msg.Ticker))
	if err != nil {
		return nil, nil, err
	}
	now, err := paygate.BlockUnixTime(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "block time")
	}
	if now < ch.PayerUnlock {
		return nil, nil, x.NewTimeError(ErrLocked, ch.PayerUnlock, "payer cannot reclaim yet")
	}
	return &msg, ch, nil
}
