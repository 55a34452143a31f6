package app

import (
	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/errors"
)

// Tx is a call carrying a single message. Authentication is provided by
// the caller of the Ledger, not by the transaction.
type Tx struct {
	Msg paygate.Msg
}

var _ paygate.Tx = Tx{}

// NewTx returns a transaction executing given message.
func NewTx(msg paygate.Msg) Tx {
	return Tx{Msg: msg}
}

func (tx Tx) GetMsg() (paygate.Msg, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrMsg, "missing message")
	}
	return tx.Msg, nil
}
