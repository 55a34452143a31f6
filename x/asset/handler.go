package asset

import (
	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/errors"
	"github.com/iov-one/paygate/x"
)

// RegisterQuery registers allowances under "/allowances". Allowances of a
// single owner can be listed with a prefix query.
func RegisterQuery(qr paygate.QueryRouter) {
	NewAllowanceBucket().Register("allowances", qr)
}

// RegisterRoutes registers the approve handler.
func RegisterRoutes(r paygate.Registry, auth x.Authenticator, resolver Resolver) {
	r.Handle(ApproveMsg{}.Path(), NewApproveHandler(auth, resolver))
}

// ApproveHandler sets token allowances.
type ApproveHandler struct {
	auth       x.Authenticator
	resolver   Resolver
	allowances *AllowanceBucket
}

var _ paygate.Handler = (*ApproveHandler)(nil)

func NewApproveHandler(auth x.Authenticator, resolver Resolver) *ApproveHandler {
	return &ApproveHandler{
		auth:       auth,
		resolver:   resolver,
		allowances: NewAllowanceBucket(),
	}
}

func (h *ApproveHandler) Check(ctx paygate.Context, db paygate.KVStore, tx paygate.Tx) (*paygate.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &paygate.CheckResult{}, nil
}

func (h *ApproveHandler) Deliver(ctx paygate.Context, db paygate.KVStore, tx paygate.Tx) (*paygate.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.allowances.SetAllowance(db, msg.Owner, msg.Spender, msg.Amount); err != nil {
		return nil, errors.Wrap(err, "set allowance")
	}
	res := &paygate.DeliverResult{}
	res.Emit(paygate.NewEvent("asset/approve").
		WithValue("owner", msg.Owner).
		WithValue("spender", msg.Spender).
		WithValue("amount", msg.Amount))
	return res, nil
}

func (h *ApproveHandler) validate(ctx paygate.Context, db paygate.KVStore, tx paygate.Tx) (*ApproveMsg, error) {
	var msg ApproveMsg
	if err := paygate.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Owner) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "owner signature missing")
	}
	a, err := h.resolver.Resolve(db, msg.Amount.Ticker)
	if err != nil {
		return nil, err
	}
	if a.Kind() != Token {
		return nil, errors.Wrapf(ErrUnsupported, "%s has no allowance", msg.Amount.Ticker)
	}
	return &msg, nil
}
