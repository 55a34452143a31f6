package x

import (
	"fmt"

	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/errors"
)

// TimeError is returned by time gated operations. It carries the point in
// time the operation depends on, ie. when a lock is released or when a
// claim expired, next to the cause of the failure.
type TimeError struct {
	// At is the time value relevant to the failure.
	At  paygate.UnixTime
	err error
}

// WithTime attaches a point in time to the given error. The returned error
// keeps the ABCI code of err.
func WithTime(err error, at paygate.UnixTime) error {
	if err == nil {
		return nil
	}
	return &TimeError{At: at, err: err}
}

func (e *TimeError) Error() string {
	return fmt.Sprintf("%s (at %s)", e.err.Error(), e.At)
}

func (e *TimeError) Cause() error {
	return e.err
}

// Format makes %+v print the stack trace of the wrapped error.
func (e *TimeError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%+v (at %s)", e.err, e.At)
		return
	}
	fmt.Fprint(s, e.Error())
}

// TimeOf returns the time value carried by the error, if any. Wrapping
// layers are unpacked.
func TimeOf(err error) (paygate.UnixTime, bool) {
	type causer interface {
		Cause() error
	}
	for err != nil {
		if te, ok := err.(*TimeError); ok {
			return te.At, true
		}
		c, ok := err.(causer)
		if !ok {
			return 0, false
		}
		err = c.Cause()
	}
	return 0, false
}

// NewTimeError returns a registered error wrapped with a description and a
// point in time.
func NewTimeError(kind *errors.Error, at paygate.UnixTime, description string) error {
	return WithTime(errors.Wrap(kind, description), at)
}
