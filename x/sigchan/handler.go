package sigchan

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

// RegisterQuery registers channels under "/sigchans". Settled channels
// are listed as well.
func RegisterQuery(qr paygate.QueryRouter) {
	NewChannelBucket().Register("sigchans", qr)
}

// RegisterRoutes registers all handlers of this extension. Every handler
// is protected by the guard and runs within a savepoint. Voucher signers
// are recovered using given recoverer.
func RegisterRoutes(r paygate.Registry, auth x.Authenticator, resolver asset.Resolver, rec crypto.Recoverer, guard utils.Guard) {
	e := newEngine(auth, resolver, rec)
	r.Handle(pathOpenMsg, utils.Protect(guard, &OpenHandler{e}))
	r.Handle(pathOpenWithApprovalMsg, utils.Protect(guard, &OpenWithApprovalHandler{e}))
	r.Handle(pathRedeemMsg, utils.Protect(guard, &RedeemHandler{e}))
	r.Handle(pathReclaimMsg, utils.Protect(guard, &ReclaimHandler{e}))
}

type engine struct {
	auth      x.Authenticator
	resolver  asset.Resolver
	recoverer crypto.Recoverer
	bucket    *ChannelBucket
}

func newEngine(auth x.Authenticator, resolver asset.Resolver, rec crypto.Recoverer) *engine {
	return &engine{
		auth:      auth,
		resolver:  resolver,
		recoverer: rec,
		bucket:    NewChannelBucket(),
	}
}

// funding holds the parameters shared by both ways of opening a channel.
type funding struct {
	payer, payee paygate.Address
	amount       coin.Coin
	duration     paygate.UnixDuration
	reclaimDelay paygate.UnixDuration
}

// checkFunding validates the funding against the state and returns the
// adapter of the deposited asset.
func (e *engine) checkFunding(db paygate.ReadOnlyKVStore, f funding) (asset.Adapter, error) {
	conf, err := loadConfiguration(db)
	if err != nil {
		return nil, err
	}
	if conf.MaxDuration > 0 && f.duration > conf.MaxDuration {
		return nil, errors.Field("Duration", errors.ErrInput,
			"duration %s exceeds %s", f.duration, conf.MaxDuration)
	}
	switch _, err := e.bucket.Live(db, ChannelKey(f.payer, f.payee, f.amount.Ticker)); {
	case err == nil:
		return nil, errors.Wrap(errors.ErrDuplicate, "channel is open")
	case !errors.ErrNotFound.Is(err):
		return nil, err
	}
	adapter, err := e.resolver.Resolve(db, f.amount.Ticker)
	if err != nil {
		return nil, errors.Wrap(err, "asset")
	}
	return adapter, nil
}

// fund stores the funded channel and pulls the deposit. A settled
// channel starts a new session and keeps its last sequence.
func (e *engine) fund(ctx paygate.Context, db paygate.KVStore, f funding, adapter asset.Adapter, attached coin.Coin) (*paygate.DeliverResult, error) {
	now, err := paygate.BlockUnixTime(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "block time")
	}
	expiration, err := now.AddDuration(f.duration)
	if err != nil {
		return nil, errors.Field("Duration", err, "expiration")
	}
	reclaimAt, err := now.AddDuration(f.reclaimDelay)
	if err != nil {
		return nil, errors.Field("ReclaimDelay", err, "reclaim time")
	}

	key := ChannelKey(f.payer, f.payee, f.amount.Ticker)
	prev, err := e.bucket.Find(db, key)
	if err != nil {
		return nil, err
	}
	ch := &Channel{
		Payer:      f.payer,
		Payee:      f.payee,
		Amount:     f.amount,
		Expiration: expiration,
		ReclaimAt:  reclaimAt,
		SessionID:  1,
		Kind:       adapter.Kind(),
	}
	if prev != nil {
		ch.SessionID = prev.SessionID + 1
		ch.LastSequence = prev.LastSequence
	}
	if err := e.bucket.Put(db, key, ch); err != nil {
		return nil, errors.Wrap(err, "cannot save channel")
	}
	if err := adapter.Deposit(ctx, db, EngineAddress, f.payer, ChannelAddress(key), f.amount, attached); err != nil {
		return nil, errors.Wrap(err, "deposit")
	}

	paygate.GetLogger(ctx).Info("signature channel opened",
		"payer", f.payer, "payee", f.payee, "ticker", f.amount.Ticker, "session", ch.SessionID)

	res := &paygate.DeliverResult{Data: key}
	res.Emit(paygate.NewEvent("sigchan/open").
		WithValue("payer", f.payer).
		WithValue("payee", f.payee).
		WithValue("amount", f.amount).
		WithValue("expiration", expiration).
		WithValue("reclaim_at", reclaimAt).
		With("session_id", strconv.FormatInt(ch.SessionID, 10)))
	return res, nil
}

// OpenHandler funds a channel from the payer wallet.
type OpenHandler struct {
	*engine
}

var _ paygate.Handler = (*OpenHandler)(nil)

func NewOpenHandler(auth x.Authenticator, resolver asset.Resolver) *OpenHandler {
	return &OpenHandler{newEngine(auth, resolver, nil)}
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
	return h.fund(ctx, db, msg.funding(), adapter, msg.Value)
}

func (h *OpenHandler) validate(ctx paygate.Context, db paygate.KVStore, tx paygate.Tx) (*OpenMsg, asset.Adapter, error) {
	var msg OpenMsg
	if err := paygate.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Payer) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "payer signature missing")
	}
	adapter, err := h.checkFunding(db, msg.funding())
	if err != nil {
		return nil, nil, err
	}
	return &msg, adapter, nil
}

func (m *OpenMsg) funding() funding {
	return funding{
		payer:        m.Payer,
		payee:        m.Payee,
		amount:       m.Amount,
		duration:     m.Duration,
		reclaimDelay: m.ReclaimDelay,
	}
}

// OpenWithApprovalHandler funds a token channel after consuming the
// approval signed by the payer. The caller does not have to be the payer.
type OpenWithApprovalHandler struct {
	*engine
}

var _ paygate.Handler = (*OpenWithApprovalHandler)(nil)

func NewOpenWithApprovalHandler(resolver asset.Resolver) *OpenWithApprovalHandler {
	return &OpenWithApprovalHandler{newEngine(nil, resolver, nil)}
}

func (h *OpenWithApprovalHandler) Check(ctx paygate.Context, db paygate.KVStore, tx paygate.Tx) (*paygate.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &paygate.CheckResult{}, nil
}

func (h *OpenWithApprovalHandler) Deliver(ctx paygate.Context, db paygate.KVStore, tx paygate.Tx) (*paygate.DeliverResult, error) {
	msg, adapter, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	approval := asset.Approval{
		Owner:     msg.Payer,
		Spender:   EngineAddress,
		Amount:    msg.Amount,
		Expiry:    msg.ApprovalExpiry,
		Signature: msg.ApprovalSignature,
	}
	if err := adapter.ConsumeApproval(ctx, db, approval); err != nil {
		return nil, errors.Wrap(err, "approval")
	}
	return h.fund(ctx, db, msg.funding(), adapter, coin.Coin{})
}

func (h *OpenWithApprovalHandler) validate(ctx paygate.Context, db paygate.KVStore, tx paygate.Tx) (*OpenWithApprovalMsg, asset.Adapter, error) {
	var msg OpenWithApprovalMsg
	if err := paygate.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	adapter, err := h.checkFunding(db, msg.funding())
	if err != nil {
		return nil, nil, err
	}
	if adapter.Kind() != asset.Token {
		return nil, nil, errors.Wrapf(asset.ErrUnsupported, "%s has no delegated approval", adapter.Kind())
	}
	return &msg, adapter, nil
}

func (m *OpenWithApprovalMsg) funding() funding {
	return funding{
		payer:        m.Payer,
		payee:        m.Payee,
		amount:       m.Amount,
		duration:     m.Duration,
		reclaimDelay: m.ReclaimDelay,
	}
}

// RedeemHandler pays the payee the amount of a voucher and refunds the
// rest of the deposit.
type RedeemHandler struct {
	*engine
}

var _ paygate.Handler = (*RedeemHandler)(nil)

func NewRedeemHandler(auth x.Authenticator, resolver asset.Resolver, rec crypto.Recoverer) *RedeemHandler {
	return &RedeemHandler{newEngine(auth, resolver, rec)}
}

func (h *RedeemHandler) Check(ctx paygate.Context, db paygate.KVStore, tx paygate.Tx) (*paygate.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &paygate.CheckResult{}, nil
}

func (h *RedeemHandler) Deliver(ctx paygate.Context, db paygate.KVStore, tx paygate.Tx) (*paygate.DeliverResult, error) {
	msg, ch, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	refund, err := ch.Amount.Subtract(msg.Amount)
	if err != nil {
		return nil, err
	}

	key := ChannelKey(msg.Payer, msg.Payee, msg.Amount.Ticker)
	ch.LastSequence = msg.Sequence
	ch.tombstone()
	if err := h.bucket.Put(db, key, ch); err != nil {
		return nil, errors.Wrap(err, "cannot close channel")
	}

	adapter, err := h.resolver.Adapter(ch.Kind, msg.Amount.Ticker)
	if err != nil {
		return nil, err
	}
	escrow := ChannelAddress(key)
	if err := adapter.Transfer(ctx, db, escrow, ch.Payee, msg.Amount); err != nil {
		return nil, asset.WrapTransfer(err, "payee amount")
	}
	if err := adapter.Transfer(ctx, db, escrow, ch.Payer, refund); err != nil {
		return nil, asset.WrapTransfer(err, "payer refund")
	}

	paygate.GetLogger(ctx).Info("signature channel redeemed",
		"payer", ch.Payer, "payee", ch.Payee, "ticker", msg.Amount.Ticker,
		"session", ch.SessionID, "sequence", msg.Sequence)

	res := &paygate.DeliverResult{}
	res.Emit(
		paygate.NewEvent("sigchan/redeem").
			WithValue("payer", ch.Payer).
			WithValue("payee", ch.Payee).
			WithValue("amount", msg.Amount).
			WithBytes("signature", msg.Signature).
			With("sequence", strconv.FormatInt(msg.Sequence, 10)),
		paygate.NewEvent("sigchan/refund").
			WithValue("payer", ch.Payer).
			WithValue("payee", ch.Payee).
			WithValue("amount", refund),
	)
	return res, nil
}

func (h *RedeemHandler) validate(ctx paygate.Context, db paygate.KVStore, tx paygate.Tx) (*RedeemMsg, *Channel, error) {
	var msg RedeemMsg
	if err := paygate.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Payee) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "payee signature missing")
	}
	ch, err := h.bucket.Find(db, ChannelKey(msg.Payer, msg.Payee, msg.Amount.Ticker))
	switch {
	case err != nil:
		return nil, nil, err
	case ch == nil:
		return nil, nil, errors.Wrap(errors.ErrNotFound, "channel")
	case msg.Sequence <= ch.LastSequence:
		// Checked before liveness, expiry and amount. A voucher replayed
		// after the channel settled reports a stale sequence.
		return nil, nil, errors.Wrapf(ErrStaleSequence, "sequence %d, last consumed %d", msg.Sequence, ch.LastSequence)
	case !ch.IsLive():
		return nil, nil, errors.Wrap(errors.ErrNotFound, "channel is settled")
	}

	now, err := paygate.BlockUnixTime(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "block time")
	}
	if now > ch.Expiration {
		return nil, nil, x.NewTimeError(ErrExpired, ch.Expiration, "voucher cannot be redeemed")
	}
	if !ch.Amount.IsGTE(msg.Amount) {
		return nil, nil, errors.Wrapf(ErrOverClaim, "%s claimed, %s deposited", msg.Amount, ch.Amount)
	}

	voucher := Voucher{
		Payer:     msg.Payer,
		Payee:     msg.Payee,
		Amount:    msg.Amount,
		Sequence:  msg.Sequence,
		SessionID: ch.SessionID,
	}
	raw, err := voucher.SignBytes(paygate.GetChainID(ctx))
	if err != nil {
		return nil, nil, err
	}
	signer, err := h.recoverer.Recover(raw, msg.Signature)
	if err != nil {
		return nil, nil, errors.Wrapf(ErrSignature, "cannot recover signer: %s", err)
	}
	if !signer.Equals(msg.Payer) {
		return nil, nil, errors.Wrapf(ErrSignature, "signed by %s, not the payer", signer)
	}
	return &msg, ch, nil
}

// ReclaimHandler returns the deposit to the payer once the reclaim time
// has passed.
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
	amount := ch.Amount

	key := ChannelKey(msg.Payer, msg.Payee, msg.Ticker)
	ch.tombstone()
	if err := h.bucket.Put(db, key, ch); err != nil {
		return nil, errors.Wrap(err, "cannot close channel")
	}
	adapter, err := h.resolver.Adapter(ch.Kind, msg.Ticker)
	if err != nil {
		return nil, err
	}
	if err := adapter.Transfer(ctx, db, ChannelAddress(key), ch.Payer, amount); err != nil {
		return nil, asset.WrapTransfer(err, "reclaim")
	}

	paygate.GetLogger(ctx).Info("signature channel reclaimed",
		"payer", ch.Payer, "payee", ch.Payee, "ticker", msg.Ticker, "session", ch.SessionID)

	res := &paygate.DeliverResult{}
	res.Emit(paygate.NewEvent("sigchan/reclaim").
		WithValue("payer", ch.Payer).
		WithValue("payee", ch.Payee).
		WithValue("amount", amount))
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
	if now < ch.ReclaimAt {
		return nil, nil, x.NewTimeError(ErrLocked, ch.ReclaimAt, "payer cannot reclaim yet")
	}
	return &msg, ch, nil
}
