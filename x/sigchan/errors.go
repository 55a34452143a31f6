package sigchan

import (
	"github.com/iov-one/paygate/errors"
)

var (
	ErrLocked        = errors.Register(400, "channel locked")
	ErrExpired       = errors.Register(401, "channel expired")
	ErrSignature     = errors.Register(402, "invalid voucher signature")
	ErrStaleSequence = errors.Register(403, "stale sequence")
	ErrOverClaim     = errors.Register(404, "claim exceeds deposit")
)
