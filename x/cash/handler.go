package cash

import (
	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/errors"
	"github.com/iov-one/paygate/x"
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r paygate.Registry, auth x.Authenticator, control Controller) {
	r.Handle(SendMsg{}.Path(), NewSendHandler(auth, control))
}

// RegisterQuery will register this bucket as "/wallets"
func RegisterQuery(qr paygate.QueryRouter) {
	NewBucket().Register("wallets", qr)
}

// SendHandler will handle sending coins
type SendHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ paygate.Handler = SendHandler{}

// NewSendHandler creates a handler for SendMsg
func NewSendHandler(auth x.Authenticator, control Controller) SendHandler {
	return SendHandler{
		auth:    auth,
		control: control,
	}
}

// Check just verifies it is properly formed and authorized
func (h SendHandler) Check(ctx paygate.Context, db paygate.KVStore, tx paygate.Tx) (*paygate.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &paygate.CheckResult{}, nil
}

// Deliver moves the coins from source to destination if
// all preconditions are met
func (h SendHandler) Deliver(ctx paygate.Context, db paygate.KVStore, tx paygate.Tx) (*paygate.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.control.MoveCoins(db, msg.Source, msg.Destination, msg.Amount); err != nil {
		return nil, err
	}
	res := &paygate.DeliverResult{}
	res.Emit(paygate.NewEvent("cash/send").
		WithValue("source", msg.Source).
		WithValue("destination", msg.Destination).
		WithValue("amount", msg.Amount))
	return res, nil
}

func (h SendHandler) validate(ctx paygate.Context, tx paygate.Tx) (*SendMsg, error) {
	var msg SendMsg
	if err := paygate.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Source) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "source signature missing")
	}
	return &msg, nil
}
