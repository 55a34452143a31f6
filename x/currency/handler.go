package currency

import (
	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/errors"
	"github.com/iov-one/paygate/x"
)

// RegisterQuery will register this bucket as "/tokens"
func RegisterQuery(qr paygate.QueryRouter) {
	NewTokenInfoBucket().Register("tokens", qr)
}

// RegisterRoutes registers the token creation handler. When issuer is
// set, only the issuer may register new tokens.
func RegisterRoutes(r paygate.Registry, auth x.Authenticator, issuer paygate.Address) {
	r.Handle(CreateMsg{}.Path(), NewCreateTokenInfoHandler(auth, issuer))
}

func NewCreateTokenInfoHandler(auth x.Authenticator, issuer paygate.Address) paygate.Handler {
	return &createTokenInfoHandler{
		auth:   auth,
		issuer: issuer,
		bucket: NewTokenInfoBucket(),
	}
}

type createTokenInfoHandler struct {
	auth   x.Authenticator
	bucket *TokenInfoBucket
	issuer paygate.Address
}

func (h *createTokenInfoHandler) Check(ctx paygate.Context, db paygate.KVStore, tx paygate.Tx) (*paygate.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &paygate.CheckResult{}, nil
}

func (h *createTokenInfoHandler) Deliver(ctx paygate.Context, db paygate.KVStore, tx paygate.Tx) (*paygate.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	obj := NewTokenInfo(msg.Ticker, msg.Name)
	if err := h.bucket.Save(db, obj); err != nil {
		return nil, err
	}
	res := &paygate.DeliverResult{}
	res.Emit(paygate.NewEvent("currency/create").With("ticker", msg.Ticker))
	return res, nil
}

func (h *createTokenInfoHandler) validate(ctx paygate.Context, db paygate.KVStore, tx paygate.Tx) (*CreateMsg, error) {
	var msg CreateMsg
	if err := paygate.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}

	if h.issuer != nil && !h.auth.HasAddress(ctx, h.issuer) {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "token only issued by %s", h.issuer)
	}

	switch ok, err := h.bucket.IsRegistered(db, msg.Ticker); {
	case err != nil:
		return nil, err
	case ok:
		return nil, errors.Wrapf(errors.ErrDuplicate, "ticker %s", msg.Ticker)
	}

	return &msg, nil
}
