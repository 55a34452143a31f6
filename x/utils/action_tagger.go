package utils

import (
	"github.com/iov-one/paygate"
	"github.com/tendermint/tendermint/libs/common"
)

// ActionTagger will inspect the message being executed and add a tag
// `action = msg.Path()` in front of the result tags. This gives clients a
// standard way to search the notification journal by message type.
type ActionTagger struct{}

var _ paygate.Decorator = ActionTagger{}

// ActionKey is used by ActionTagger as the Key in the Tag it adds
const ActionKey = "action"

// NewActionTagger creates a ActionTagger decorator
func NewActionTagger() ActionTagger {
	return ActionTagger{}
}

// Check just passes the request along
func (ActionTagger) Check(ctx paygate.Context, db paygate.KVStore, tx paygate.Tx, next paygate.Checker) (*paygate.CheckResult, error) {
	return next.Check(ctx, db, tx)
}

// Deliver adds a tag on the result if there is a success.
func (ActionTagger) Deliver(ctx paygate.Context, db paygate.KVStore, tx paygate.Tx, next paygate.Deliverer) (*paygate.DeliverResult, error) {
	// if we error in reporting, let's do so early before dispatching
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}

	res, err := next.Deliver(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	tag := common.KVPair{
		Key:   []byte(ActionKey),
		Value: []byte(msg.Path()),
	}
	res.Tags = append([]common.KVPair{tag}, res.Tags...)
	return res, nil
}
