package hashchan

import (
	"fmt"

	"github.com/iov-one/paygate/errors"
)

var (
	ErrLocked        = errors.Register(300, "channel locked")
	ErrTicks         = errors.Register(301, "ticks exceed chain length")
	ErrChainMismatch = errors.Register(302, "hash chain mismatch")
	ErrZeroShare     = errors.Register(303, "zero payee share")
)

// TicksError is returned when a redeem claims more ticks than the chain
// can prove. It carries both values.
type TicksError struct {
	Ticks       int64
	ChainLength int64
}

func (e *TicksError) Error() string {
	return fmt.Sprintf("%d ticks claimed, chain length is %d: %s", e.Ticks, e.ChainLength, ErrTicks.Error())
}

func (e *TicksError) Cause() error {
	return ErrTicks
}

func newTicksError(ticks, chainLength int64) error {
	return errors.Wrap(&TicksError{Ticks: ticks, ChainLength: chainLength}, "redeem")
}

// TicksOf returns the claimed ticks and the chain length carried by the
// error, if any.
func TicksOf(err error) (ticks, chainLength int64, ok bool) {
	type causer interface {
		Cause() error
	}
	for err != nil {
		if te, isTicks := err.(*TicksError); isTicks {
			return te.Ticks, te.ChainLength, true
		}
		c, isCauser := err.(causer)
		if !isCauser {
			return 0, 0, false
		}
		err = c.Cause()
	}
	return 0, 0, false
}
